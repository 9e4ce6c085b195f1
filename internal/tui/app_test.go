package tui

import (
	"context"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/emilianohg/sitecrew/internal/access"
	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/config"
	"github.com/emilianohg/sitecrew/internal/models"
	"github.com/emilianohg/sitecrew/internal/session"
	"github.com/emilianohg/sitecrew/internal/session/mocks"
	"github.com/emilianohg/sitecrew/internal/tui/screens"
)

func newTestApp(t *testing.T, identity *models.Identity) *App {
	t.Helper()

	store := mocks.NewMockStore(gomock.NewController(t))
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	store.EXPECT().Clear(gomock.Any()).Return(nil).AnyTimes()

	mgr := session.NewManager(store)
	if identity != nil {
		require.NoError(t, mgr.SignIn(context.Background(), *identity, "token", ""))
	}

	deps := screens.Deps{
		Client:  api.New(api.Config{BaseURL: "http://127.0.0.1:0/api"}, mgr),
		Session: mgr,
		Config:  config.DefaultConfig(),
	}
	a := NewApp(deps)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a.Init()
	return a
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFactories_CoverEveryRoute(t *testing.T) {
	t.Parallel()

	paths := []string{access.PathLogin, access.PathRegister}
	for _, r := range models.Roles {
		for _, e := range access.Menu(string(r)) {
			paths = append(paths, e.Path)
		}
	}

	for _, p := range paths {
		_, ok := factories[p]
		require.True(t, ok, "no screen for %s", p)
	}
}

func TestApp_SignedOutStartsAtLogin(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, nil)
	require.Equal(t, access.PathLogin, a.path)

	a.Update(screens.NavigateMsg{Path: "/dashboard/admin/users"})
	require.Equal(t, access.PathLogin, a.path)
	require.NotContains(t, a.View(), "Users")
}

func TestApp_GuardRedirectsToRoleHome(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, &models.Identity{ID: 2, Name: "Morgan Manager", Email: "manager@sitecrew.test", Role: models.RoleManager})
	require.Equal(t, "/dashboard/manager", a.path)

	a.Update(screens.NavigateMsg{Path: "/dashboard/admin/users"})
	require.Equal(t, "/dashboard/manager", a.path)
	require.Empty(t, a.notices)

	a.Update(screens.NavigateMsg{Path: "/nowhere"})
	require.Equal(t, "/dashboard/manager", a.path)

	a.Update(screens.NavigateMsg{Path: "/dashboard/manager/bookings"})
	require.Equal(t, "/dashboard/manager/bookings", a.path)
}

func TestApp_DigitKeysFollowTheMenu(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, &models.Identity{ID: 1, Name: "Alex Admin", Email: "admin@sitecrew.test", Role: models.RoleAdmin})

	a.Update(key("4"))
	require.Equal(t, "/dashboard/admin/sites", a.path)

	a.Update(key("9"))
	require.Equal(t, "/dashboard/admin/payroll", a.path)

	// The payroll range form captures keys, so digits go to the form.
	a.Update(key("1"))
	require.Equal(t, "/dashboard/admin/payroll", a.path)
}

func TestApp_QuitGoesHomeFirst(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, &models.Identity{ID: 5, Name: "Chris Client", Email: "client@sitecrew.test", Role: models.RoleClient})

	a.Update(key("2"))
	require.Equal(t, "/dashboard/client/bookings", a.path)

	a.Update(key("q"))
	require.Equal(t, "/dashboard/client", a.path)

	_, cmd := a.Update(key("q"))
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_SessionChange(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, nil)

	emp := models.Identity{ID: 3, Name: "Eli Electrician", Email: "eli@sitecrew.test", Role: models.RoleEmployee}
	require.NoError(t, a.deps.Session.SignIn(context.Background(), emp, "token", ""))
	a.Update(SessionChangedMsg{Identity: &emp})

	require.Equal(t, "/dashboard/employee", a.path)
	require.Len(t, a.notices, 1)
	require.Equal(t, "Signed in as Eli Electrician", a.notices[0].text)
	require.Contains(t, a.View(), "My Tasks")

	require.NoError(t, a.deps.Session.SignOut(context.Background()))
	a.Update(SessionChangedMsg{})
	require.Equal(t, access.PathLogin, a.path)
	require.Equal(t, "Signed out", a.notices[len(a.notices)-1].text)
}

func TestApp_NoticesAreCappedAndDismissable(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, &models.Identity{ID: 2, Name: "Morgan Manager", Email: "manager@sitecrew.test", Role: models.RoleManager})

	for _, text := range []string{"one", "two", "three", "four"} {
		a.Update(screens.NoticeMsg{Level: screens.Info, Text: text})
	}
	require.Len(t, a.notices, maxNotices)
	require.Equal(t, "two", a.notices[0].text)

	a.Update(noticeExpiredMsg{id: a.notices[0].id})
	require.Len(t, a.notices, 2)
	require.Equal(t, "three", a.notices[0].text)

	a.Update(key("x"))
	require.Len(t, a.notices, 1)
	require.Equal(t, "three", a.notices[0].text)
}

func TestApp_AuthErrorSignsOut(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, &models.Identity{ID: 2, Name: "Morgan Manager", Email: "manager@sitecrew.test", Role: models.RoleManager})

	_, cmd := a.Update(screens.NoticeMsg{
		Level: screens.Failure,
		Text:  "Unauthorized",
		Err:   &api.Error{Status: http.StatusUnauthorized, Message: "Unauthorized"},
	})
	require.NotNil(t, cmd)

	// The first command is the notice timer; only run the sign-out.
	msgs := cmd().(tea.BatchMsg)
	require.Len(t, msgs, 2)
	require.Nil(t, msgs[1]())

	_, ok := a.deps.Session.Current()
	require.False(t, ok)
}
