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

// Trades offered by the manager's skill filter.
var skillFilters = []string{"Electrical", "Plumbing", "Carpentry", "Masonry", "Painting", "Welding", "HVAC"}

func employeeColumns() []Column[models.Employee] {
	return []Column[models.Employee]{
		{Title: "ID", Width: 5, Value: func(e models.Employee) string { return fmt.Sprint(e.ID) }},
		{Title: "Name", Width: 20, Value: func(e models.Employee) string { return e.Name }},
		{Title: "Email", Width: 24, Value: func(e models.Employee) string { return e.Email }},
		{Title: "Trade", Width: 14, Value: func(e models.Employee) string { return display.Text(e.Trade) }},
		{Title: "Skills", Width: 20, Value: func(e models.Employee) string { return display.Text(e.Skills) }},
		{Title: "Rate", Width: 9, Value: func(e models.Employee) string { return display.Money(e.HourlyRate) }},
		{Title: "Status", Width: 8, Value: func(e models.Employee) string { return string(e.Status) }},
	}
}

// userOptions lists users of role as id choices.
func userOptions(users []models.User, role models.Role) []form.Option {
	var out []form.Option
	for _, u := range users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, form.Option{
			Value: strconv.FormatInt(u.ID, 10),
			Label: fmt.Sprintf("%s <%s>", u.Name, u.Email),
		})
	}
	return out
}

func employeeForm(title string, e models.Employee, users []models.User) *form.Form {
	status := string(e.Status)
	if status == "" {
		status = string(models.EmployeeActive)
	}

	return form.New(title,
		form.Field{Key: "user_id", Label: "User", Kind: form.ID, Value: form.FromInt64(e.UserID), Options: userOptions(users, models.RoleEmployee)},
		form.Field{Key: "name", Label: "Name", Kind: form.Text, Value: e.Name},
		form.Field{Key: "email", Label: "Email", Kind: form.Text, Value: e.Email},
		form.Field{Key: "phone", Label: "Phone", Kind: form.Text, Value: form.FromString(e.Phone)},
		form.Field{Key: "trade", Label: "Trade", Kind: form.Text, Value: form.FromString(e.Trade)},
		form.Field{Key: "skills", Label: "Skills", Kind: form.Text, Value: form.FromString(e.Skills)},
		form.Field{Key: "hourly_rate", Label: "Hourly rate", Kind: form.Number, Value: form.FromDecimal(e.HourlyRate)},
		form.Field{Key: "status", Label: "Status", Kind: form.Choice, Value: status, Required: true, Options: form.Options(models.EmployeeStatuses...)},
	)
}

func employeeInput(f *form.Form) (api.EmployeeInput, error) {
	userID, err := form.OptInt64(f.Get("user_id"))
	if err != nil {
		return api.EmployeeInput{}, err
	}
	rate, err := form.OptDecimal(f.Get("hourly_rate"))
	if err != nil {
		return api.EmployeeInput{}, err
	}

	return api.EmployeeInput{
		UserID:     userID,
		Name:       form.OptString(f.Get("name")),
		Email:      form.OptString(f.Get("email")),
		Phone:      form.OptString(f.Get("phone")),
		Trade:      form.OptString(f.Get("trade")),
		Skills:     form.OptString(f.Get("skills")),
		HourlyRate: rate,
		Status:     f.Get("status"),
	}, nil
}

func NewAdminEmployees(d Deps) Screen {
	c := d.Client
	var users []models.User

	return NewResourceScreen(Resource[models.Employee]{
		Title:   "Employees",
		Columns: employeeColumns(),
		List: listing.Config[models.Employee]{
			PageSize: d.Config.PageSize,
			Haystack: func(e models.Employee) string {
				return e.Name + " " + e.Email + " " + form.FromString(e.Trade)
			},
			Facets: []listing.Facet[models.Employee]{
				{Key: "status", Label: "Status", Options: models.EmployeeStatuses, Match: listing.Exact(func(e models.Employee) string { return string(e.Status) })},
			},
		},
		Load: func(ctx context.Context, _ map[string]string) ([]models.Employee, error) {
			return c.Employees(ctx)
		},
		Lookups: []Lookup{LookupInto(&users, c.Users)},
		Actions: []Action[models.Employee]{
			{
				Key: "a", Label: "Add", Global: true,
				Form: func(models.Employee) *form.Form { return employeeForm("New employee", models.Employee{}, users) },
				Run: func(ctx context.Context, _ models.Employee, f *form.Form) error {
					in, err := employeeInput(f)
					if err != nil {
						return err
					}
					return c.CreateEmployee(ctx, in)
				},
				Done: "Employee created",
			},
			{
				Key: "e", Label: "Edit",
				Form: func(e models.Employee) *form.Form { return employeeForm("Edit employee", e, users) },
				Run: func(ctx context.Context, e models.Employee, f *form.Form) error {
					in, err := employeeInput(f)
					if err != nil {
						return err
					}
					return c.UpdateEmployee(ctx, e.ID, in)
				},
				Done: "Employee updated",
			},
			{
				Key: "d", Label: "Delete",
				Confirm: func(e models.Employee) string { return fmt.Sprintf("Delete employee '%s'?", e.Name) },
				Run: func(ctx context.Context, e models.Employee, _ *form.Form) error {
					return c.DeleteEmployee(ctx, e.ID)
				},
				Done: "Employee deleted",
			},
		},
	})
}

// NewManagerEmployees is the read-only roster managers staff projects from.
func NewManagerEmployees(d Deps) Screen {
	c := d.Client

	return NewResourceScreen(Resource[models.Employee]{
		Title:   "Employees",
		Columns: employeeColumns(),
		List: listing.Config[models.Employee]{
			PageSize: d.Config.PageSize,
			Haystack: func(e models.Employee) string { return e.Name + " " + e.Email },
			Facets: []listing.Facet[models.Employee]{
				{Key: "skill", Label: "Skill", Options: skillFilters, Match: listing.Contains(func(e models.Employee) string {
					return form.FromString(e.Skills) + " " + form.FromString(e.Trade)
				})},
			},
		},
		Load: func(ctx context.Context, _ map[string]string) ([]models.Employee, error) {
			return c.Employees(ctx)
		},
	})
}
