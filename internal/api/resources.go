package api

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/emilianohg/sitecrew/internal/models"
)

// Inputs carry every editable field; nil pointers and invalid decimals are
// sent as JSON null so a cleared field is cleared on the server.

type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	// Password is only sent when set.
	Password *string `json:"password,omitempty"`
	Phone    *string `json:"phone"`
	Skills   *string `json:"skills"`
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	return list[models.User](ctx, c, "/users", nil)
}

func (c *Client) AdminUsers(ctx context.Context) ([]models.User, error) {
	return list[models.User](ctx, c, "/admin/users", nil)
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) error {
	return c.post(ctx, "/admin/user", in, nil)
}

func (c *Client) UpdateUser(ctx context.Context, id int64, in UserInput) error {
	return c.put(ctx, idPath("/admin/user", id), in)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("/admin/user", id))
}

type EmployeeInput struct {
	UserID     *int64              `json:"user_id"`
	Name       *string             `json:"name"`
	Email      *string             `json:"email"`
	Phone      *string             `json:"phone"`
	Trade      *string             `json:"trade"`
	Skills     *string             `json:"skills"`
	HourlyRate decimal.NullDecimal `json:"hourly_rate"`
	Status     string              `json:"status"`
}

func (c *Client) Employees(ctx context.Context) ([]models.Employee, error) {
	return list[models.Employee](ctx, c, "/employees", nil)
}

func (c *Client) CreateEmployee(ctx context.Context, in EmployeeInput) error {
	return c.post(ctx, "/employees", in, nil)
}

func (c *Client) UpdateEmployee(ctx context.Context, id int64, in EmployeeInput) error {
	return c.put(ctx, idPath("/employees", id), in)
}

func (c *Client) DeleteEmployee(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("/employees", id))
}

type SiteInput struct {
	Name      string              `json:"name"`
	Location  string              `json:"location"`
	Latitude  decimal.NullDecimal `json:"latitude"`
	Longitude decimal.NullDecimal `json:"longitude"`
	Status    string              `json:"status"`
}

func (c *Client) Sites(ctx context.Context) ([]models.Site, error) {
	return list[models.Site](ctx, c, "/sites", nil)
}

func (c *Client) CreateSite(ctx context.Context, in SiteInput) error {
	return c.post(ctx, "/sites", in, nil)
}

func (c *Client) UpdateSite(ctx context.Context, id int64, in SiteInput) error {
	return c.put(ctx, idPath("/sites", id), in)
}

func (c *Client) DeleteSite(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("/sites", id))
}

type BookingInput struct {
	ClientID       *int64              `json:"client_id,omitempty"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Location       *string             `json:"location"`
	RequiredSkills *string             `json:"required_skills"`
	StartDate      *string             `json:"start_date"`
	EndDate        *string             `json:"end_date"`
	Budget         decimal.NullDecimal `json:"budget"`
	Status         string              `json:"status,omitempty"`
}

// BookingFilter narrows GET /bookings on the server. Unassigned wins over
// Status, as it does on the backend.
type BookingFilter struct {
	Status     string
	Unassigned bool
}

func (f BookingFilter) query() url.Values {
	q := url.Values{}
	switch {
	case f.Unassigned:
		q.Set("unassigned", "1")
	case f.Status != "":
		q.Set("status", f.Status)
	}
	return q
}

func (c *Client) Bookings(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	return list[models.Booking](ctx, c, "/bookings", f.query())
}

func (c *Client) MyBookings(ctx context.Context) ([]models.Booking, error) {
	return list[models.Booking](ctx, c, "/bookings/mine", nil)
}

func (c *Client) CreateBooking(ctx context.Context, in BookingInput) error {
	return c.post(ctx, "/bookings", in, nil)
}

func (c *Client) UpdateBooking(ctx context.Context, id int64, in BookingInput) error {
	return c.put(ctx, idPath("/bookings", id), in)
}

func (c *Client) DeleteBooking(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("/bookings", id))
}

func (c *Client) CancelBooking(ctx context.Context, id int64) error {
	return c.post(ctx, idPath("/bookings", id, "/cancel"), nil, nil)
}

func (c *Client) AdminBookings(ctx context.Context) ([]models.Booking, error) {
	return list[models.Booking](ctx, c, "/admin/bookings", nil)
}

func (c *Client) AdminCreateBooking(ctx context.Context, in BookingInput) error {
	return c.post(ctx, "/admin/bookings", in, nil)
}

func (c *Client) AdminUpdateBooking(ctx context.Context, id int64, in BookingInput) error {
	return c.put(ctx, idPath("/admin/bookings", id), in)
}

// SetBookingStatus changes only the status. Transitions are not checked
// on the client.
func (c *Client) SetBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	return c.put(ctx, idPath("/admin/bookings", id), map[string]string{"status": string(status)})
}

func (c *Client) AdminDeleteBooking(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("/admin/bookings", id))
}

type ConflictQuery struct {
	EmployeeID *int64  `json:"employee_id"`
	Location   *string `json:"location"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
}

type conflictResponse struct {
	Conflicts []models.ReportRow `json:"conflicts"`
}

// CheckConflict returns the bookings the server considers overlapping.
func (c *Client) CheckConflict(ctx context.Context, q ConflictQuery) ([]models.ReportRow, error) {
	var out conflictResponse
	if err := c.post(ctx, "/bookings/check_conflict", q, &out); err != nil {
		return nil, err
	}
	return out.Conflicts, nil
}

type ProjectInput struct {
	BookingID   int64   `json:"booking_id"`
	ProjectName string  `json:"project_name"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Notes       *string `json:"notes"`
	Status      string  `json:"status"`
}

func (c *Client) Projects(ctx context.Context) ([]models.Project, error) {
	return list[models.Project](ctx, c, "/projects", nil)
}

func (c *Client) CreateProject(ctx context.Context, in ProjectInput) error {
	return c.post(ctx, "/projects", in, nil)
}

func (c *Client) UpdateProject(ctx context.Context, id int64, in ProjectInput) error {
	return c.put(ctx, idPath("/projects", id), in)
}

func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("/projects", id))
}

type AssignmentInput struct {
	ProjectID  int64   `json:"project_id"`
	EmployeeID int64   `json:"employee_id"`
	RoleDesc   *string `json:"role_desc"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	Status     string  `json:"status"`
}

func (c *Client) Assignments(ctx context.Context) ([]models.Assignment, error) {
	return list[models.Assignment](ctx, c, "/assignments", nil)
}

// AllAssignments includes employee, project and booking names.
func (c *Client) AllAssignments(ctx context.Context) ([]models.Assignment, error) {
	return list[models.Assignment](ctx, c, "/assignments/all", nil)
}

func (c *Client) CreateAssignment(ctx context.Context, in AssignmentInput) error {
	return c.post(ctx, "/assignments", in, nil)
}

func (c *Client) UpdateAssignment(ctx context.Context, id int64, in AssignmentInput) error {
	return c.put(ctx, idPath("/assignments", id), in)
}

func (c *Client) DeleteAssignment(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("/assignments", id))
}

// SetAssignmentStatus is the employee's own status update.
func (c *Client) SetAssignmentStatus(ctx context.Context, id int64, status models.AssignmentStatus) error {
	return c.put(ctx, idPath("/assignments", id, "/status"), map[string]string{"status": string(status)})
}

func (c *Client) EmployeeTasks(ctx context.Context) ([]models.Task, error) {
	return list[models.Task](ctx, c, "/employee/tasks", nil)
}
