package tui

import (
	"github.com/emilianohg/sitecrew/internal/access"
	"github.com/emilianohg/sitecrew/internal/models"
	"github.com/emilianohg/sitecrew/internal/tui/screens"
)

type screenFactory func(d screens.Deps, params map[string]string) screens.Screen

func plain(build func(screens.Deps) screens.Screen) screenFactory {
	return func(d screens.Deps, _ map[string]string) screens.Screen { return build(d) }
}

func dashboard(role models.Role) screenFactory {
	return func(d screens.Deps, _ map[string]string) screens.Screen { return screens.NewDashboard(d, role) }
}

// factories has one entry per route access knows about.
var factories = map[string]screenFactory{
	access.PathLogin:    plain(screens.NewLogin),
	access.PathRegister: plain(screens.NewRegister),

	"/dashboard/admin":             dashboard(models.RoleAdmin),
	"/dashboard/admin/users":       plain(screens.NewAdminUsers),
	"/dashboard/admin/employees":   plain(screens.NewAdminEmployees),
	"/dashboard/admin/sites":       plain(screens.NewAdminSites),
	"/dashboard/admin/projects":    plain(screens.NewAdminProjects),
	"/dashboard/admin/bookings":    plain(screens.NewAdminBookings),
	"/dashboard/admin/assignments": plain(screens.NewAdminAssignments),
	"/dashboard/admin/reports": func(d screens.Deps, _ map[string]string) screens.Screen {
		return screens.NewReports(d)
	},
	"/dashboard/admin/payroll": func(d screens.Deps, _ map[string]string) screens.Screen {
		return screens.NewPayroll(d)
	},

	"/dashboard/manager":             dashboard(models.RoleManager),
	"/dashboard/manager/projects":    screens.NewManagerProjects,
	"/dashboard/manager/employees":   plain(screens.NewManagerEmployees),
	"/dashboard/manager/bookings":    plain(screens.NewManagerBookings),
	"/dashboard/manager/assignments": plain(screens.NewManagerAssignments),

	"/dashboard/employee":       dashboard(models.RoleEmployee),
	"/dashboard/employee/tasks": plain(screens.NewEmployeeTasks),

	"/dashboard/client":          dashboard(models.RoleClient),
	"/dashboard/client/bookings": plain(screens.NewClientBookings),
	"/dashboard/client/book":     plain(screens.NewClientBook),
}
