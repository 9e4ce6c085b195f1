// Package access maps an identity's role to the routes it may reach and the
// navigation entries it sees, and decides where to send it when a route is
// not allowed.
package access

import (
	"strings"

	"github.com/emilianohg/sitecrew/internal/models"
)

const (
	PathLogin    = "/login"
	PathRegister = "/register"
)

// Entry is one navigation item. Icon is a lookup key for the renderer.
type Entry struct {
	Label string
	Path  string
	Icon  string
}

var menus = map[models.Role][]Entry{
	models.RoleAdmin: {
		{Label: "Dashboard", Path: "/dashboard/admin", Icon: "dashboard"},
		{Label: "Users", Path: "/dashboard/admin/users", Icon: "users"},
		{Label: "Employees", Path: "/dashboard/admin/employees", Icon: "user-cog"},
		{Label: "Sites", Path: "/dashboard/admin/sites", Icon: "building"},
		{Label: "Projects", Path: "/dashboard/admin/projects", Icon: "layers"},
		{Label: "Bookings", Path: "/dashboard/admin/bookings", Icon: "calendar"},
		{Label: "Assignments", Path: "/dashboard/admin/assignments", Icon: "check-square"},
		{Label: "Reports", Path: "/dashboard/admin/reports", Icon: "chart"},
		{Label: "Payroll", Path: "/dashboard/admin/payroll", Icon: "wallet"},
	},
	models.RoleManager: {
		{Label: "Dashboard", Path: "/dashboard/manager", Icon: "dashboard"},
		{Label: "Projects", Path: "/dashboard/manager/projects", Icon: "layers"},
		{Label: "Employees", Path: "/dashboard/manager/employees", Icon: "users"},
		{Label: "Bookings", Path: "/dashboard/manager/bookings", Icon: "calendar"},
		{Label: "Assignments", Path: "/dashboard/manager/assignments", Icon: "check-square"},
	},
	models.RoleEmployee: {
		{Label: "Dashboard", Path: "/dashboard/employee", Icon: "dashboard"},
		{Label: "My Tasks", Path: "/dashboard/employee/tasks", Icon: "check-square"},
	},
	models.RoleClient: {
		{Label: "Dashboard", Path: "/dashboard/client", Icon: "dashboard"},
		{Label: "My Bookings", Path: "/dashboard/client/bookings", Icon: "calendar"},
		{Label: "Create Booking", Path: "/dashboard/client/book", Icon: "plus-circle"},
	},
}

// Menu returns the ordered navigation entries for role. Unknown or empty
// roles get an empty slice. The result is a copy and safe to modify.
func Menu(role string) []Entry {
	r, _ := models.ParseRole(role)
	entries := menus[r]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Home is the landing path for role: its first menu entry, or the login
// route when the role has no menu.
func Home(role string) string {
	m := Menu(role)
	if len(m) == 0 {
		return PathLogin
	}
	return m[0].Path
}

// Route is a reachable path. An empty Role means any authenticated identity.
type Route struct {
	Path   string
	Role   models.Role
	Public bool
}

var routes = buildRoutes()

func buildRoutes() map[string]Route {
	out := map[string]Route{
		PathLogin:    {Path: PathLogin, Public: true},
		PathRegister: {Path: PathRegister, Public: true},
	}
	for role, entries := range menus {
		for _, e := range entries {
			out[e.Path] = Route{Path: e.Path, Role: role}
		}
	}
	return out
}

// Resolve looks up path in the route table. Trailing slashes are ignored.
func Resolve(path string) (Route, bool) {
	p := strings.TrimSpace(path)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	r, ok := routes[p]
	return r, ok
}

type Outcome int

const (
	Render Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Decision is the guard's answer. Path is where to go: the requested path
// on Render, otherwise the redirect target.
type Decision struct {
	Outcome Outcome
	Path    string
}

// Guard decides whether identity may see path. It never fails: anything
// that is not allowed is answered with a redirect.
func Guard(identity *models.Identity, path string) Decision {
	route, known := Resolve(path)

	if known && route.Public {
		return Decision{Outcome: Render, Path: route.Path}
	}

	if identity == nil {
		return Decision{Outcome: RedirectLogin, Path: PathLogin}
	}

	role, valid := models.ParseRole(string(identity.Role))
	if !valid {
		return Decision{Outcome: RedirectLogin, Path: PathLogin}
	}

	home := Home(string(role))
	if !known {
		return Decision{Outcome: RedirectHome, Path: home}
	}

	if route.Role != "" && route.Role != role {
		return Decision{Outcome: RedirectHome, Path: home}
	}

	return Decision{Outcome: Render, Path: route.Path}
}
