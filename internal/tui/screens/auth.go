package screens

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/sitecrew/internal/access"
	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/form"
	"github.com/emilianohg/sitecrew/internal/models"
	"github.com/emilianohg/sitecrew/internal/session"
)

var errUnsupportedRole = errors.New("This account has no role the client can open. Ask an administrator to fix it.")

func loginForm() *form.Form {
	return form.New("Sign in",
		form.Field{Key: "email", Label: "Email", Kind: form.Text, Required: true},
		form.Field{Key: "password", Label: "Password", Kind: form.Secret, Required: true},
	)
}

// SignIn logs in against the backend and stores the session. The app
// follows the session change to the role's home.
func SignIn(ctx context.Context, c *api.Client, mgr *session.Manager, email, password string) (models.Identity, error) {
	res, err := c.Login(ctx, email, password)
	if err != nil {
		return models.Identity{}, err
	}

	if err := mgr.SignIn(ctx, res.Identity, res.Token, res.Cookie); err != nil {
		if errors.Is(err, session.ErrInvalidRole) {
			return models.Identity{}, errUnsupportedRole
		}
		return models.Identity{}, err
	}
	return res.Identity, nil
}

func NewLogin(d Deps) Screen {
	return NewFormScreen(FormPage{
		Title: "SiteCrew",
		Intro: "Construction workforce booking",
		Build: loginForm,
		Submit: func(ctx context.Context, f *form.Form) (tea.Cmd, error) {
			_, err := SignIn(ctx, d.Client, d.Session, f.Get("email"), f.Get("password"))
			return nil, err
		},
		Shortcuts: map[string]tea.Cmd{"ctrl+r": Navigate(access.PathRegister)},
		Hint:      "[ctrl+r] Create an account  [ctrl+c] Quit",
	})
}

func roleOptions() []string {
	out := make([]string, len(models.Roles))
	for i, r := range models.Roles {
		out[i] = string(r)
	}
	return out
}

func registerForm() *form.Form {
	return form.New("Create an account",
		form.Field{Key: "name", Label: "Name", Kind: form.Text, Required: true},
		form.Field{Key: "email", Label: "Email", Kind: form.Text, Required: true},
		form.Field{Key: "password", Label: "Password", Kind: form.Secret, Required: true},
		form.Field{Key: "role", Label: "Role", Kind: form.Choice, Value: string(models.RoleEmployee), Required: true, Options: form.Options(roleOptions()...)},
		form.Field{Key: "phone", Label: "Phone", Kind: form.Text},
		form.Field{Key: "skills", Label: "Skills", Kind: form.Text},
	)
}

func registerInput(f *form.Form) api.RegisterInput {
	return api.RegisterInput{
		Name:     strings.TrimSpace(f.Get("name")),
		Email:    strings.TrimSpace(f.Get("email")),
		Password: f.Get("password"),
		Role:     f.Get("role"),
		Phone:    form.OptString(f.Get("phone")),
		Skills:   form.OptString(f.Get("skills")),
	}
}

func NewRegister(d Deps) Screen {
	return NewFormScreen(FormPage{
		Title: "SiteCrew",
		Build: registerForm,
		Submit: func(ctx context.Context, f *form.Form) (tea.Cmd, error) {
			if err := d.Client.Register(ctx, registerInput(f)); err != nil {
				return nil, err
			}
			return tea.Batch(
				Notify(Success, "Account created. Sign in to continue."),
				Navigate(access.PathLogin),
			), nil
		},
		Cancel: Navigate(access.PathLogin),
		Hint:   "[esc] Back to sign in",
	})
}
