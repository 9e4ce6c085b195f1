package access_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emilianohg/sitecrew/internal/access"
	"github.com/emilianohg/sitecrew/internal/models"
)

func TestMenu_Total(t *testing.T) {
	t.Parallel()

	for _, role := range []string{"", "superuser", "ADMIN ", "manager", "Employee", "client", "\t"} {
		menu := access.Menu(role)
		require.NotNil(t, menu, role)
		for _, e := range menu {
			require.NotEmpty(t, e.Label)
			require.NotEmpty(t, e.Path)
		}
	}

	require.Empty(t, access.Menu("superuser"))
	require.Len(t, access.Menu("ADMIN "), 9)
	require.Len(t, access.Menu("manager"), 5)
	require.Len(t, access.Menu("employee"), 2)
	require.Len(t, access.Menu("client"), 3)
}

func TestMenu_ReturnsCopy(t *testing.T) {
	t.Parallel()

	m := access.Menu("client")
	m[0].Label = "changed"
	require.Equal(t, "Dashboard", access.Menu("client")[0].Label)
}

func TestMenu_EntriesAreReachable(t *testing.T) {
	t.Parallel()

	for _, role := range models.Roles {
		identity := &models.Identity{ID: 1, Role: role}
		for _, e := range access.Menu(string(role)) {
			d := access.Guard(identity, e.Path)
			require.Equal(t, access.Render, d.Outcome, "%s %s", role, e.Path)
		}
	}
}

func TestHome(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/dashboard/admin", access.Home("admin"))
	require.Equal(t, "/dashboard/client", access.Home("client"))
	require.Equal(t, access.PathLogin, access.Home("nobody"))
}

func TestGuard(t *testing.T) {
	t.Parallel()

	admin := &models.Identity{ID: 1, Role: models.RoleAdmin}
	client := &models.Identity{ID: 2, Role: models.RoleClient}
	broken := &models.Identity{ID: 3, Role: "root"}

	tests := []struct {
		name     string
		identity *models.Identity
		path     string
		want     access.Decision
	}{
		{"anonymous on login", nil, "/login", access.Decision{Outcome: access.Render, Path: "/login"}},
		{"anonymous on register", nil, "/register", access.Decision{Outcome: access.Render, Path: "/register"}},
		{"signed in on login", admin, "/login", access.Decision{Outcome: access.Render, Path: "/login"}},
		{"anonymous on protected", nil, "/dashboard/admin", access.Decision{Outcome: access.RedirectLogin, Path: "/login"}},
		{"anonymous on unknown", nil, "/nowhere", access.Decision{Outcome: access.RedirectLogin, Path: "/login"}},
		{"own page", admin, "/dashboard/admin/payroll", access.Decision{Outcome: access.Render, Path: "/dashboard/admin/payroll"}},
		{"trailing slash", admin, "/dashboard/admin/users/", access.Decision{Outcome: access.Render, Path: "/dashboard/admin/users"}},
		{"other role page", client, "/dashboard/admin/users", access.Decision{Outcome: access.RedirectHome, Path: "/dashboard/client"}},
		{"unknown path", client, "/dashboard/client/nope", access.Decision{Outcome: access.RedirectHome, Path: "/dashboard/client"}},
		{"unknown role", broken, "/dashboard/admin", access.Decision{Outcome: access.RedirectLogin, Path: "/login"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, access.Guard(tt.identity, tt.path))
		})
	}
}
