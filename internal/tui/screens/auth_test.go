package screens

import (
	"context"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/emilianohg/sitecrew/internal/access"
	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/config"
	"github.com/emilianohg/sitecrew/internal/models"
	"github.com/emilianohg/sitecrew/internal/sandbox"
	"github.com/emilianohg/sitecrew/internal/session"
	"github.com/emilianohg/sitecrew/internal/session/mocks"
)

func loginDeps(t *testing.T) (Deps, *mocks.MockStore) {
	t.Helper()

	srv := httptest.NewServer(sandbox.New().Router())
	t.Cleanup(srv.Close)

	store := mocks.NewMockStore(gomock.NewController(t))
	mgr := session.NewManager(store)
	c := api.New(api.Config{BaseURL: srv.URL + "/api"}, mgr)

	return Deps{Client: c, Session: mgr, Config: config.DefaultConfig()}, store
}

func TestLogin_SignsIn(t *testing.T) {
	t.Parallel()

	d, store := loginDeps(t)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, s models.StoredSession) error {
			require.NotEmpty(t, s.Token)
			require.Equal(t, models.RoleAdmin, s.Identity.Role)
			return nil
		})

	s := NewLogin(d)
	s.Init()

	notices := press(t, s, "admin@sitecrew.test", "tab", sandbox.DemoPassword, "ctrl+s")
	require.Empty(t, notices)

	id, ok := d.Session.Current()
	require.True(t, ok)
	require.Equal(t, "Alex Admin", id.Name)
	require.Equal(t, models.RoleAdmin, id.Role)
}

func TestLogin_WrongPasswordStaysSignedOut(t *testing.T) {
	t.Parallel()

	d, _ := loginDeps(t)
	s := NewLogin(d).(*FormScreen)
	s.Init()

	press(t, s, "admin@sitecrew.test", "tab", "nope", "ctrl+s")

	_, ok := d.Session.Current()
	require.False(t, ok)
	require.Contains(t, s.View(), "Wrong password")
	require.Equal(t, "admin@sitecrew.test", s.Form().Get("email"))
}

func TestLogin_RequiresFields(t *testing.T) {
	t.Parallel()

	d, _ := loginDeps(t)
	s := NewLogin(d)
	s.Init()

	require.Nil(t, s.Update(tea.KeyMsg{Type: tea.KeyCtrlS}))
	require.Contains(t, s.View(), "Email is required")
	require.True(t, s.Capturing())
}

func TestLogin_RegisterShortcut(t *testing.T) {
	t.Parallel()

	d, _ := loginDeps(t)
	s := NewLogin(d)
	s.Init()

	cmd := s.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	require.Equal(t, NavigateMsg{Path: access.PathRegister}, cmd())
}

func TestRegister_EscGoesBackToLogin(t *testing.T) {
	t.Parallel()

	d, _ := loginDeps(t)
	s := NewRegister(d)
	s.Init()

	cmd := s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.Equal(t, NavigateMsg{Path: access.PathLogin}, cmd())
}

func TestRegister_CreatesAccount(t *testing.T) {
	t.Parallel()

	d, _ := loginDeps(t)
	s := NewRegister(d).(*FormScreen)
	s.Init()
	require.Equal(t, string(models.RoleEmployee), s.Form().Get("role"))

	s.Form().Set("name", "Pat Plumber")
	s.Form().Set("email", "pat@sitecrew.test")
	s.Form().Set("password", "secret1")

	cmd := s.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)

	var msgs []tea.Msg
	queue := []tea.Cmd{s.Update(cmd())}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		msgs = append(msgs, msg)
	}

	require.Contains(t, msgs, NavigateMsg{Path: access.PathLogin})
	require.Contains(t, msgs, NoticeMsg{Level: Success, Text: "Account created. Sign in to continue."})
	require.Empty(t, s.Form().Get("name"))
}
