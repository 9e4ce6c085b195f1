package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/display"
	"github.com/emilianohg/sitecrew/internal/form"
	"github.com/emilianohg/sitecrew/internal/listing"
	"github.com/emilianohg/sitecrew/internal/models"
)

const pathManagerProjects = "/dashboard/manager/projects"

// ParamBooking carries the booking a new project is created from.
const ParamBooking = "booking"

func bookingFields(b models.Booking) []form.Field {
	return []form.Field{
		{Key: "title", Label: "Title", Kind: form.Text, Value: b.Title, Required: true},
		{Key: "description", Label: "Description", Kind: form.Text, Value: b.Description, Required: true},
		{Key: "location", Label: "Location", Kind: form.Text, Value: form.FromString(b.Location)},
		{Key: "required_skills", Label: "Required skills", Kind: form.Text, Value: form.FromString(b.RequiredSkills)},
		{Key: "start_date", Label: "Start date", Kind: form.Date, Value: form.FromString(b.StartDate)},
		{Key: "end_date", Label: "End date", Kind: form.Date, Value: form.FromString(b.EndDate)},
		{Key: "budget", Label: "Budget", Kind: form.Number, Value: form.FromDecimal(b.Budget)},
	}
}

// clientBookingForm is the booking form a client fills in.
func clientBookingForm(title string, b models.Booking) *form.Form {
	return form.New(title, bookingFields(b)...)
}

// adminBookingForm adds the client and the status.
func adminBookingForm(title string, b models.Booking, users []models.User) *form.Form {
	status := string(b.Status)
	if status == "" {
		status = string(models.BookingPending)
	}

	fields := []form.Field{
		{Key: "client_id", Label: "Client", Kind: form.ID, Value: form.FromInt64(b.ClientID), Required: true, Options: userOptions(users, models.RoleClient)},
	}
	fields = append(fields, bookingFields(b)...)
	fields = append(fields, form.Field{Key: "status", Label: "Status", Kind: form.Choice, Value: status, Required: true, Options: form.Options(models.BookingStatuses...)})

	return form.New(title, fields...)
}

func bookingInput(f *form.Form) (api.BookingInput, error) {
	clientID, err := form.OptInt64(f.Get("client_id"))
	if err != nil {
		return api.BookingInput{}, err
	}
	budget, err := form.OptDecimal(f.Get("budget"))
	if err != nil {
		return api.BookingInput{}, err
	}

	return api.BookingInput{
		ClientID:       clientID,
		Title:          strings.TrimSpace(f.Get("title")),
		Description:    strings.TrimSpace(f.Get("description")),
		Location:       form.OptString(f.Get("location")),
		RequiredSkills: form.OptString(f.Get("required_skills")),
		StartDate:      form.OptString(f.Get("start_date")),
		EndDate:        form.OptString(f.Get("end_date")),
		Budget:         budget,
		Status:         f.Get("status"),
	}, nil
}

// statusForm edits a single status choice.
func statusForm(title, current string, options []string) *form.Form {
	return form.New(title,
		form.Field{Key: "status", Label: "Status", Kind: form.Choice, Value: current, Required: true, Options: form.Options(options...)},
	)
}

func pending(b models.Booking) bool {
	return b.Status == models.BookingPending
}

func userName(users []models.User, id *int64) string {
	if id == nil {
		return display.Placeholder
	}
	for _, u := range users {
		if u.ID == *id {
			return u.Name
		}
	}
	return fmt.Sprintf("#%d", *id)
}

// conflictCheck asks the backend for bookings overlapping the form's dates
// and turns any hit into a question. self is skipped when editing.
func conflictCheck(ctx context.Context, c *api.Client, self int64, f *form.Form) (string, error) {
	start, end := strings.TrimSpace(f.Get("start_date")), strings.TrimSpace(f.Get("end_date"))
	if start == "" || end == "" {
		return "", nil
	}

	location := form.OptString(f.Get("location"))
	rows, err := c.CheckConflict(ctx, api.ConflictQuery{
		Location:  location,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return "", err
	}

	n := 0
	for _, r := range rows {
		if id, ok := r["id"].(float64); ok && self != 0 && int64(id) == self {
			continue
		}
		n++
	}
	if n == 0 {
		return "", nil
	}

	where := "these dates"
	if location != nil {
		where = fmt.Sprintf("these dates at %s", *location)
	}
	return fmt.Sprintf("%d other booking(s) overlap %s. Save anyway?", n, where), nil
}

func bookingColumns(client func(models.Booking) string) []Column[models.Booking] {
	cols := []Column[models.Booking]{
		{Title: "ID", Width: 5, Value: func(b models.Booking) string { return fmt.Sprint(b.ID) }},
		{Title: "Title", Width: 22, Value: func(b models.Booking) string { return b.Title }},
	}
	if client != nil {
		cols = append(cols, Column[models.Booking]{Title: "Client", Width: 16, Value: client})
	}
	return append(cols,
		Column[models.Booking]{Title: "Location", Width: 14, Value: func(b models.Booking) string { return display.Text(b.Location) }},
		Column[models.Booking]{Title: "Start", Width: 12, Value: func(b models.Booking) string { return display.Date(b.StartDate) }},
		Column[models.Booking]{Title: "End", Width: 12, Value: func(b models.Booking) string { return display.Date(b.EndDate) }},
		Column[models.Booking]{Title: "Budget", Width: 11, Value: func(b models.Booking) string { return display.Money(b.Budget) }},
		Column[models.Booking]{Title: "Status", Width: 9, Value: func(b models.Booking) string { return string(b.Status) }},
	)
}

func bookingStatusFacet(remote bool) listing.Facet[models.Booking] {
	return listing.Facet[models.Booking]{
		Key: "status", Label: "Status", Options: models.BookingStatuses, Remote: remote,
		Match: listing.Exact(func(b models.Booking) string { return string(b.Status) }),
	}
}

func NewAdminBookings(d Deps) Screen {
	c := d.Client
	var users []models.User

	clientOf := func(b models.Booking) string { return userName(users, b.ClientID) }

	return NewResourceScreen(Resource[models.Booking]{
		Title:   "Bookings",
		Columns: bookingColumns(clientOf),
		List: listing.Config[models.Booking]{
			PageSize: d.Config.PageSize,
			Haystack: func(b models.Booking) string {
				return b.Title + " " + b.Description + " " + clientOf(b)
			},
			Facets: []listing.Facet[models.Booking]{bookingStatusFacet(false)},
		},
		Load: func(ctx context.Context, _ map[string]string) ([]models.Booking, error) {
			return c.AdminBookings(ctx)
		},
		Lookups: []Lookup{LookupInto(&users, c.Users)},
		Actions: []Action[models.Booking]{
			{
				Key: "a", Label: "Add", Global: true,
				Form: func(models.Booking) *form.Form { return adminBookingForm("New booking", models.Booking{}, users) },
				Check: func(ctx context.Context, _ models.Booking, f *form.Form) (string, error) {
					return conflictCheck(ctx, c, 0, f)
				},
				Run: func(ctx context.Context, _ models.Booking, f *form.Form) error {
					in, err := bookingInput(f)
					if err != nil {
						return err
					}
					return c.AdminCreateBooking(ctx, in)
				},
				Done: "Booking created",
			},
			{
				Key: "e", Label: "Edit",
				Form: func(b models.Booking) *form.Form { return adminBookingForm("Edit booking", b, users) },
				Check: func(ctx context.Context, b models.Booking, f *form.Form) (string, error) {
					return conflictCheck(ctx, c, b.ID, f)
				},
				Run: func(ctx context.Context, b models.Booking, f *form.Form) error {
					in, err := bookingInput(f)
					if err != nil {
						return err
					}
					return c.AdminUpdateBooking(ctx, b.ID, in)
				},
				Done: "Booking updated",
			},
			{
				Key: "s", Label: "Status",
				Form: func(b models.Booking) *form.Form {
					return statusForm("Booking status", string(b.Status), models.BookingStatuses)
				},
				Run: func(ctx context.Context, b models.Booking, f *form.Form) error {
					return c.SetBookingStatus(ctx, b.ID, models.BookingStatus(f.Get("status")))
				},
				Done: "Status updated",
			},
			{
				Key: "d", Label: "Delete",
				Confirm: func(b models.Booking) string {
					return fmt.Sprintf("Delete booking '%s' with its projects and assignments?", b.Title)
				},
				Run: func(ctx context.Context, b models.Booking, _ *form.Form) error {
					return c.AdminDeleteBooking(ctx, b.ID)
				},
				Done: "Booking deleted",
			},
		},
	})
}

// NewManagerBookings filters on the server: the status and unassigned
// facets are sent as query parameters.
func NewManagerBookings(d Deps) Screen {
	c := d.Client

	return NewResourceScreen(Resource[models.Booking]{
		Title:   "Bookings",
		Columns: bookingColumns(nil),
		List: listing.Config[models.Booking]{
			PageSize: d.Config.PageSize,
			Haystack: func(b models.Booking) string {
				return b.Title + " " + b.Description + " " + form.FromString(b.RequiredSkills)
			},
			Facets: []listing.Facet[models.Booking]{
				bookingStatusFacet(true),
				{Key: "unassigned", Label: "Unassigned", Options: []string{"1"}, Remote: true},
			},
		},
		Load: func(ctx context.Context, params map[string]string) ([]models.Booking, error) {
			return c.Bookings(ctx, api.BookingFilter{
				Status:     params["status"],
				Unassigned: params["unassigned"] == "1",
			})
		},
		Actions: []Action[models.Booking]{
			{
				Key: "s", Label: "Status",
				Form: func(b models.Booking) *form.Form {
					return statusForm("Booking status", string(b.Status), models.BookingStatuses)
				},
				Run: func(ctx context.Context, b models.Booking, f *form.Form) error {
					return c.SetBookingStatus(ctx, b.ID, models.BookingStatus(f.Get("status")))
				},
				Done: "Status updated",
			},
			{
				Key: "p", Label: "Create project",
				Allowed: func(b models.Booking) bool { return b.Status == models.BookingApproved },
				Jump: func(b models.Booking) tea.Cmd {
					return NavigateWith(pathManagerProjects, map[string]string{ParamBooking: fmt.Sprint(b.ID)})
				},
			},
		},
	})
}

func NewClientBookings(d Deps) Screen {
	c := d.Client

	return NewResourceScreen(Resource[models.Booking]{
		Title:   "My Bookings",
		Columns: bookingColumns(nil),
		List: listing.Config[models.Booking]{
			PageSize: d.Config.PageSize,
			Haystack: func(b models.Booking) string {
				return b.Title + " " + b.Description + " " + form.FromString(b.Location)
			},
			Facets: []listing.Facet[models.Booking]{bookingStatusFacet(false)},
		},
		Load: func(ctx context.Context, _ map[string]string) ([]models.Booking, error) {
			return c.MyBookings(ctx)
		},
		Actions: []Action[models.Booking]{
			{
				Key: "a", Label: "New booking", Global: true,
				Jump: func(models.Booking) tea.Cmd { return Navigate(pathClientBook) },
			},
			{
				Key: "e", Label: "Edit", Allowed: pending,
				Form: func(b models.Booking) *form.Form { return clientBookingForm("Edit booking", b) },
				Run: func(ctx context.Context, b models.Booking, f *form.Form) error {
					in, err := bookingInput(f)
					if err != nil {
						return err
					}
					return c.UpdateBooking(ctx, b.ID, in)
				},
				Done: "Booking updated",
			},
			{
				Key: "c", Label: "Cancel booking", Allowed: pending,
				Confirm: func(b models.Booking) string { return fmt.Sprintf("Cancel booking '%s'?", b.Title) },
				Run: func(ctx context.Context, b models.Booking, _ *form.Form) error {
					return c.CancelBooking(ctx, b.ID)
				},
				Done: "Booking cancelled",
			},
			{
				Key: "d", Label: "Delete", Allowed: pending,
				Confirm: func(b models.Booking) string { return fmt.Sprintf("Delete booking '%s'?", b.Title) },
				Run: func(ctx context.Context, b models.Booking, _ *form.Form) error {
					return c.DeleteBooking(ctx, b.ID)
				},
				Done: "Booking deleted",
			},
		},
	})
}
