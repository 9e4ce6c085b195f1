package screens

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/config"
	"github.com/emilianohg/sitecrew/internal/sandbox"
)

func TestReports_LoadsEveryTab(t *testing.T) {
	t.Parallel()

	r := NewReports(Deps{Client: sandboxClient(t, "admin@sitecrew.test"), Config: config.DefaultConfig()})
	require.Empty(t, drain(t, r, r.Init()))

	require.False(t, r.loading)
	require.Len(t, r.tabs, len(api.Reports))
	for _, tab := range r.tabs {
		require.NoError(t, tab.err, tab.report.Name)
	}
}

func TestReports_ForbiddenTabsKeepTheirOwnError(t *testing.T) {
	t.Parallel()

	r := NewReports(Deps{Client: sandboxClient(t, "eli@sitecrew.test"), Config: config.DefaultConfig()})
	require.Empty(t, drain(t, r, r.Init()))

	for _, tab := range r.tabs {
		require.ErrorIs(t, tab.err, api.ErrForbidden, tab.report.Name)
	}
	require.Contains(t, r.View(), "Error: Access denied")
}

func TestReports_RejectedSessionNotifiesOnce(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(sandbox.New().Router())
	t.Cleanup(srv.Close)

	c := api.New(api.Config{BaseURL: srv.URL + "/api"}, &staticCreds{})
	r := NewReports(Deps{Client: c, Config: config.DefaultConfig()})

	notices := drain(t, r, r.Init())
	require.Len(t, notices, 1)
	require.Equal(t, Failure, notices[0].Level)
	require.True(t, api.IsAuthError(notices[0].Err))
	require.False(t, r.loading)
}
