package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/display"
	"github.com/emilianohg/sitecrew/internal/form"
	"github.com/emilianohg/sitecrew/internal/listing"
	"github.com/emilianohg/sitecrew/internal/models"
)

func projectColumns() []Column[models.Project] {
	return []Column[models.Project]{
		{Title: "ID", Width: 5, Value: func(p models.Project) string { return fmt.Sprint(p.ID) }},
		{Title: "Project", Width: 24, Value: func(p models.Project) string { return p.ProjectName }},
		{Title: "Booking", Width: 8, Value: func(p models.Project) string { return fmt.Sprint(p.BookingID) }},
		{Title: "Start", Width: 12, Value: func(p models.Project) string { return display.Date(p.StartDate) }},
		{Title: "End", Width: 12, Value: func(p models.Project) string { return display.Date(p.EndDate) }},
		{Title: "Status", Width: 10, Value: func(p models.Project) string { return string(p.Status) }},
		{Title: "Notes", Width: 24, Value: func(p models.Project) string { return display.Text(p.Notes) }},
	}
}

func projectListing(pageSize int) listing.Config[models.Project] {
	return listing.Config[models.Project]{
		PageSize: pageSize,
		Haystack: func(p models.Project) string { return p.ProjectName + " " + form.FromString(p.Notes) },
		Facets: []listing.Facet[models.Project]{
			{Key: "status", Label: "Status", Options: models.ProjectStatuses, Match: listing.Exact(func(p models.Project) string { return string(p.Status) })},
		},
	}
}

func bookingOptions(bookings []models.Booking) []form.Option {
	out := make([]form.Option, len(bookings))
	for i, b := range bookings {
		out[i] = form.Option{Value: strconv.FormatInt(b.ID, 10), Label: fmt.Sprintf("#%d %s", b.ID, b.Title)}
	}
	return out
}

func projectForm(title string, p models.Project, bookings []models.Booking) *form.Form {
	status := string(p.Status)
	if status == "" {
		status = string(models.ProjectActive)
	}
	booking := ""
	if p.BookingID != 0 {
		booking = strconv.FormatInt(p.BookingID, 10)
	}

	return form.New(title,
		form.Field{Key: "booking_id", Label: "Booking", Kind: form.ID, Value: booking, Required: true, Options: bookingOptions(bookings)},
		form.Field{Key: "project_name", Label: "Project name", Kind: form.Text, Value: p.ProjectName, Required: true},
		form.Field{Key: "start_date", Label: "Start date", Kind: form.Date, Value: form.FromString(p.StartDate)},
		form.Field{Key: "end_date", Label: "End date", Kind: form.Date, Value: form.FromString(p.EndDate)},
		form.Field{Key: "notes", Label: "Notes", Kind: form.Text, Value: form.FromString(p.Notes)},
		form.Field{Key: "status", Label: "Status", Kind: form.Choice, Value: status, Required: true, Options: form.Options(models.ProjectStatuses...)},
	)
}

func projectInput(f *form.Form) (api.ProjectInput, error) {
	bookingID, err := form.OptInt64(f.Get("booking_id"))
	if err != nil {
		return api.ProjectInput{}, err
	}
	if bookingID == nil {
		return api.ProjectInput{}, &form.ValidationError{Field: "Booking", Reason: "must be selected"}
	}

	return api.ProjectInput{
		BookingID:   *bookingID,
		ProjectName: strings.TrimSpace(f.Get("project_name")),
		StartDate:   form.OptString(f.Get("start_date")),
		EndDate:     form.OptString(f.Get("end_date")),
		Notes:       form.OptString(f.Get("notes")),
		Status:      f.Get("status"),
	}, nil
}

func deleteProject(c *api.Client) Action[models.Project] {
	return Action[models.Project]{
		Key: "d", Label: "Delete",
		Confirm: func(p models.Project) string {
			return fmt.Sprintf("Delete project '%s' and its assignments?", p.ProjectName)
		},
		Run: func(ctx context.Context, p models.Project, _ *form.Form) error {
			return c.DeleteProject(ctx, p.ID)
		},
		Done: "Project deleted",
	}
}

func NewAdminProjects(d Deps) Screen {
	c := d.Client

	return NewResourceScreen(Resource[models.Project]{
		Title:   "Projects",
		Columns: projectColumns(),
		List:    projectListing(d.Config.PageSize),
		Load: func(ctx context.Context, _ map[string]string) ([]models.Project, error) {
			return c.Projects(ctx)
		},
		Actions: []Action[models.Project]{deleteProject(c)},
	})
}

// NewManagerProjects opens the create form straight away when params name
// the booking to build the project from.
func NewManagerProjects(d Deps, params map[string]string) Screen {
	c := d.Client
	var approved []models.Booking

	s := NewResourceScreen(Resource[models.Project]{
		Title:   "Projects",
		Columns: projectColumns(),
		List:    projectListing(d.Config.PageSize),
		Load: func(ctx context.Context, _ map[string]string) ([]models.Project, error) {
			return c.Projects(ctx)
		},
		Lookups: []Lookup{LookupInto(&approved, func(ctx context.Context) ([]models.Booking, error) {
			return c.Bookings(ctx, api.BookingFilter{Status: string(models.BookingApproved)})
		})},
		Actions: []Action[models.Project]{
			{
				Key: "a", Label: "Add", Global: true,
				Form: func(models.Project) *form.Form { return projectForm("New project", models.Project{}, approved) },
				Run: func(ctx context.Context, _ models.Project, f *form.Form) error {
					in, err := projectInput(f)
					if err != nil {
						return err
					}
					return c.CreateProject(ctx, in)
				},
				Done: "Project created",
			},
			{
				Key: "e", Label: "Edit",
				Form: func(p models.Project) *form.Form { return projectForm("Edit project", p, approved) },
				Run: func(ctx context.Context, p models.Project, f *form.Form) error {
					in, err := projectInput(f)
					if err != nil {
						return err
					}
					return c.UpdateProject(ctx, p.ID, in)
				},
				Done: "Project updated",
			},
			deleteProject(c),
		},
	})

	if id := params[ParamBooking]; id != "" {
		s.OpenOnReady("a", func(f *form.Form) {
			f.Set("booking_id", id)
			for _, b := range approved {
				if strconv.FormatInt(b.ID, 10) != id {
					continue
				}
				f.Set("project_name", b.Title)
				f.Set("start_date", form.FromString(b.StartDate))
				f.Set("end_date", form.FromString(b.EndDate))
			}
		})
	}

	return s
}
