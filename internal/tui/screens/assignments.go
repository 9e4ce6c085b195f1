package screens

import (
	"context"
	"fmt"
	"strconv"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/display"
	"github.com/emilianohg/sitecrew/internal/form"
	"github.com/emilianohg/sitecrew/internal/listing"
	"github.com/emilianohg/sitecrew/internal/models"
)

func assignmentStatusFacet() listing.Facet[models.Assignment] {
	return listing.Facet[models.Assignment]{
		Key: "status", Label: "Status", Options: models.AssignmentStatuses,
		Match: listing.Exact(func(a models.Assignment) string { return string(a.Status) }),
	}
}

func deleteAssignment(c *api.Client) Action[models.Assignment] {
	return Action[models.Assignment]{
		Key: "d", Label: "Delete",
		Confirm: func(a models.Assignment) string { return fmt.Sprintf("Delete assignment #%d?", a.ID) },
		Run: func(ctx context.Context, a models.Assignment, _ *form.Form) error {
			return c.DeleteAssignment(ctx, a.ID)
		},
		Done: "Assignment deleted",
	}
}

// NewAdminAssignments lists every assignment joined with its project,
// employee and booking.
func NewAdminAssignments(d Deps) Screen {
	c := d.Client

	return NewResourceScreen(Resource[models.Assignment]{
		Title: "Assignments",
		Columns: []Column[models.Assignment]{
			{Title: "ID", Width: 5, Value: func(a models.Assignment) string { return fmt.Sprint(a.ID) }},
			{Title: "Project", Width: 20, Value: func(a models.Assignment) string { return display.Text(a.ProjectName) }},
			{Title: "Employee", Width: 18, Value: func(a models.Assignment) string { return display.Text(a.EmployeeName) }},
			{Title: "Role", Width: 16, Value: func(a models.Assignment) string { return display.Text(a.RoleDesc) }},
			{Title: "Location", Width: 12, Value: func(a models.Assignment) string { return display.Text(a.BookingLocation) }},
			{Title: "Start", Width: 12, Value: func(a models.Assignment) string { return display.Date(a.StartDate) }},
			{Title: "End", Width: 12, Value: func(a models.Assignment) string { return display.Date(a.EndDate) }},
			{Title: "Status", Width: 9, Value: func(a models.Assignment) string { return string(a.Status) }},
		},
		List: listing.Config[models.Assignment]{
			PageSize: d.Config.PageSize,
			Haystack: func(a models.Assignment) string {
				return form.FromString(a.ProjectName) + " " + form.FromString(a.EmployeeName) + " " + form.FromString(a.RoleDesc)
			},
			Facets: []listing.Facet[models.Assignment]{assignmentStatusFacet()},
		},
		Load: func(ctx context.Context, _ map[string]string) ([]models.Assignment, error) {
			return c.AllAssignments(ctx)
		},
		Actions: []Action[models.Assignment]{deleteAssignment(c)},
	})
}

// employeeRef is the id an assignment stores for e: the linked user when
// there is one.
func employeeRef(e models.Employee) int64 {
	if e.UserID != nil {
		return *e.UserID
	}
	return e.ID
}

func employeeOptions(employees []models.Employee) []form.Option {
	out := make([]form.Option, len(employees))
	for i, e := range employees {
		label := e.Name
		if e.Trade != nil {
			label += " (" + *e.Trade + ")"
		}
		out[i] = form.Option{Value: strconv.FormatInt(employeeRef(e), 10), Label: label}
	}
	return out
}

func projectOptions(projects []models.Project) []form.Option {
	out := make([]form.Option, len(projects))
	for i, p := range projects {
		out[i] = form.Option{Value: strconv.FormatInt(p.ID, 10), Label: p.ProjectName}
	}
	return out
}

func assignmentForm(title string, a models.Assignment, employees []models.Employee, projects []models.Project) *form.Form {
	status := string(a.Status)
	if status == "" {
		status = string(models.AssignmentAssigned)
	}
	id := func(n int64) string {
		if n == 0 {
			return ""
		}
		return strconv.FormatInt(n, 10)
	}

	return form.New(title,
		form.Field{Key: "project_id", Label: "Project", Kind: form.ID, Value: id(a.ProjectID), Required: true, Options: projectOptions(projects)},
		form.Field{Key: "employee_id", Label: "Employee", Kind: form.ID, Value: id(a.EmployeeID), Required: true, Options: employeeOptions(employees)},
		form.Field{Key: "role_desc", Label: "Role", Kind: form.Text, Value: form.FromString(a.RoleDesc)},
		form.Field{Key: "start_date", Label: "Start date", Kind: form.Date, Value: form.FromString(a.StartDate)},
		form.Field{Key: "end_date", Label: "End date", Kind: form.Date, Value: form.FromString(a.EndDate)},
		form.Field{Key: "status", Label: "Status", Kind: form.Choice, Value: status, Required: true, Options: form.Options(models.AssignmentStatuses...)},
	)
}

func assignmentInput(f *form.Form) (api.AssignmentInput, error) {
	projectID, err := strconv.ParseInt(f.Get("project_id"), 10, 64)
	if err != nil {
		return api.AssignmentInput{}, &form.ValidationError{Field: "Project", Reason: "must be selected"}
	}
	employeeID, err := strconv.ParseInt(f.Get("employee_id"), 10, 64)
	if err != nil {
		return api.AssignmentInput{}, &form.ValidationError{Field: "Employee", Reason: "must be selected"}
	}

	return api.AssignmentInput{
		ProjectID:  projectID,
		EmployeeID: employeeID,
		RoleDesc:   form.OptString(f.Get("role_desc")),
		StartDate:  form.OptString(f.Get("start_date")),
		EndDate:    form.OptString(f.Get("end_date")),
		Status:     f.Get("status"),
	}, nil
}

func NewManagerAssignments(d Deps) Screen {
	c := d.Client
	var (
		employees []models.Employee
		projects  []models.Project
	)

	projectName := func(a models.Assignment) string {
		for _, p := range projects {
			if p.ID == a.ProjectID {
				return p.ProjectName
			}
		}
		return fmt.Sprintf("#%d", a.ProjectID)
	}
	employeeName := func(a models.Assignment) string {
		for _, e := range employees {
			if employeeRef(e) == a.EmployeeID {
				return e.Name
			}
		}
		return fmt.Sprintf("#%d", a.EmployeeID)
	}

	return NewResourceScreen(Resource[models.Assignment]{
		Title: "Assignments",
		Columns: []Column[models.Assignment]{
			{Title: "ID", Width: 5, Value: func(a models.Assignment) string { return fmt.Sprint(a.ID) }},
			{Title: "Project", Width: 20, Value: projectName},
			{Title: "Employee", Width: 18, Value: employeeName},
			{Title: "Role", Width: 18, Value: func(a models.Assignment) string { return display.Text(a.RoleDesc) }},
			{Title: "Start", Width: 12, Value: func(a models.Assignment) string { return display.Date(a.StartDate) }},
			{Title: "End", Width: 12, Value: func(a models.Assignment) string { return display.Date(a.EndDate) }},
			{Title: "Status", Width: 9, Value: func(a models.Assignment) string { return string(a.Status) }},
		},
		List: listing.Config[models.Assignment]{
			PageSize: d.Config.PageSize,
			Haystack: func(a models.Assignment) string { return form.FromString(a.RoleDesc) },
			Facets:   []listing.Facet[models.Assignment]{assignmentStatusFacet()},
		},
		Load: func(ctx context.Context, _ map[string]string) ([]models.Assignment, error) {
			return c.Assignments(ctx)
		},
		Lookups: []Lookup{
			LookupInto(&employees, c.Employees),
			LookupInto(&projects, c.Projects),
		},
		Actions: []Action[models.Assignment]{
			{
				Key: "a", Label: "Assign", Global: true,
				Form: func(models.Assignment) *form.Form {
					return assignmentForm("New assignment", models.Assignment{}, employees, projects)
				},
				Run: func(ctx context.Context, _ models.Assignment, f *form.Form) error {
					in, err := assignmentInput(f)
					if err != nil {
						return err
					}
					return c.CreateAssignment(ctx, in)
				},
				Done: "Employee assigned",
			},
			{
				Key: "e", Label: "Edit",
				Form: func(a models.Assignment) *form.Form {
					return assignmentForm("Edit assignment", a, employees, projects)
				},
				Run: func(ctx context.Context, a models.Assignment, f *form.Form) error {
					in, err := assignmentInput(f)
					if err != nil {
						return err
					}
					return c.UpdateAssignment(ctx, a.ID, in)
				},
				Done: "Assignment updated",
			},
			deleteAssignment(c),
		},
	})
}

// NewEmployeeTasks shows the signed-in employee's own assignments.
func NewEmployeeTasks(d Deps) Screen {
	c := d.Client

	return NewResourceScreen(Resource[models.Task]{
		Title: "My Tasks",
		Columns: []Column[models.Task]{
			{Title: "ID", Width: 5, Value: func(t models.Task) string { return fmt.Sprint(t.ID) }},
			{Title: "Project", Width: 20, Value: func(t models.Task) string { return t.ProjectName }},
			{Title: "Booking", Width: 18, Value: func(t models.Task) string { return display.Text(t.BookingTitle) }},
			{Title: "Location", Width: 12, Value: func(t models.Task) string { return display.Text(t.BookingLocation) }},
			{Title: "Role", Width: 16, Value: func(t models.Task) string { return display.Text(t.RoleDesc) }},
			{Title: "Start", Width: 12, Value: func(t models.Task) string { return display.Date(t.StartDate) }},
			{Title: "End", Width: 12, Value: func(t models.Task) string { return display.Date(t.EndDate) }},
			{Title: "Status", Width: 9, Value: func(t models.Task) string { return string(t.Status) }},
		},
		List: listing.Config[models.Task]{
			PageSize: d.Config.PageSize,
			Haystack: func(t models.Task) string {
				return t.ProjectName + " " + form.FromString(t.BookingTitle) + " " + form.FromString(t.RoleDesc)
			},
			Facets: []listing.Facet[models.Task]{
				{Key: "status", Label: "Status", Options: models.AssignmentStatuses, Match: listing.Exact(func(t models.Task) string { return string(t.Status) })},
			},
		},
		Load: func(ctx context.Context, _ map[string]string) ([]models.Task, error) {
			return c.EmployeeTasks(ctx)
		},
		Actions: []Action[models.Task]{
			{
				Key: "s", Label: "Update status",
				Form: func(t models.Task) *form.Form {
					return statusForm("Task status", string(t.Status), models.AssignmentStatuses)
				},
				Run: func(ctx context.Context, t models.Task, f *form.Form) error {
					return c.SetAssignmentStatus(ctx, t.ID, models.AssignmentStatus(f.Get("status")))
				},
				Done: "Status updated",
			},
		},
	})
}
