package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/display"
	"github.com/emilianohg/sitecrew/internal/form"
	"github.com/emilianohg/sitecrew/internal/listing"
	"github.com/emilianohg/sitecrew/internal/models"
)

func roleNames() []string {
	out := make([]string, len(models.Roles))
	for i, r := range models.Roles {
		out[i] = string(r)
	}
	return out
}

func userForm(title string, u models.User, creating bool) *form.Form {
	password := form.Field{Key: "password", Label: "Password", Kind: form.Secret, Required: creating}
	if !creating {
		password.Label = "New password"
	}

	role := string(u.Role)
	if role == "" {
		role = string(models.RoleEmployee)
	}

	return form.New(title,
		form.Field{Key: "name", Label: "Name", Kind: form.Text, Value: u.Name, Required: true},
		form.Field{Key: "email", Label: "Email", Kind: form.Text, Value: u.Email, Required: true},
		form.Field{Key: "role", Label: "Role", Kind: form.Choice, Value: role, Required: true, Options: form.Options(roleNames()...)},
		form.Field{Key: "phone", Label: "Phone", Kind: form.Text, Value: form.FromString(u.Phone)},
		form.Field{Key: "skills", Label: "Skills", Kind: form.Text, Value: form.FromString(u.Skills)},
		password,
	)
}

// userInput reads a user form. A blank password is left out so an edit
// keeps the current one.
func userInput(f *form.Form) api.UserInput {
	return api.UserInput{
		Name:     strings.TrimSpace(f.Get("name")),
		Email:    strings.TrimSpace(f.Get("email")),
		Role:     f.Get("role"),
		Phone:    form.OptString(f.Get("phone")),
		Skills:   form.OptString(f.Get("skills")),
		Password: form.OptString(f.Get("password")),
	}
}

func NewAdminUsers(d Deps) Screen {
	c := d.Client

	return NewResourceScreen(Resource[models.User]{
		Title: "Users",
		Columns: []Column[models.User]{
			{Title: "ID", Width: 5, Value: func(u models.User) string { return fmt.Sprint(u.ID) }},
			{Title: "Name", Width: 20, Value: func(u models.User) string { return u.Name }},
			{Title: "Email", Width: 26, Value: func(u models.User) string { return u.Email }},
			{Title: "Role", Width: 9, Value: func(u models.User) string { return string(u.Role) }},
			{Title: "Phone", Width: 12, Value: func(u models.User) string { return display.Text(u.Phone) }},
			{Title: "Skills", Width: 18, Value: func(u models.User) string { return display.Text(u.Skills) }},
			{Title: "Created", Width: 12, Value: func(u models.User) string { return display.Date(u.CreatedAt) }},
		},
		List: listing.Config[models.User]{
			PageSize: d.Config.PageSize,
			Haystack: func(u models.User) string { return u.Name + " " + u.Email },
			Facets: []listing.Facet[models.User]{
				{Key: "role", Label: "Role", Options: roleNames(), Match: listing.Exact(func(u models.User) string { return string(u.Role) })},
			},
		},
		Load: func(ctx context.Context, _ map[string]string) ([]models.User, error) {
			return c.AdminUsers(ctx)
		},
		Actions: []Action[models.User]{
			{
				Key: "a", Label: "Add", Global: true,
				Form: func(models.User) *form.Form { return userForm("New user", models.User{}, true) },
				Run: func(ctx context.Context, _ models.User, f *form.Form) error {
					return c.CreateUser(ctx, userInput(f))
				},
				Done: "User created",
			},
			{
				Key: "e", Label: "Edit",
				Form: func(u models.User) *form.Form { return userForm("Edit user", u, false) },
				Run: func(ctx context.Context, u models.User, f *form.Form) error {
					return c.UpdateUser(ctx, u.ID, userInput(f))
				},
				Done: "User updated",
			},
			{
				Key: "d", Label: "Delete",
				Confirm: func(u models.User) string { return fmt.Sprintf("Delete user '%s'?", u.Name) },
				Run: func(ctx context.Context, u models.User, _ *form.Form) error {
					return c.DeleteUser(ctx, u.ID)
				},
				Done: "User deleted",
			},
		},
	})
}
