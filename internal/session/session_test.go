package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/emilianohg/sitecrew/internal/models"
	"github.com/emilianohg/sitecrew/internal/session"
	"github.com/emilianohg/sitecrew/internal/session/mocks"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestManager_Restore(t *testing.T) {
	t.Parallel()

	ana := models.Identity{ID: 3, Name: "Ana", Email: "ana@example.com", Role: models.RoleManager}

	tests := []struct {
		name      string
		stored    *models.StoredSession
		wantAuth  bool
		wantClear bool
	}{
		{name: "nothing stored"},
		{
			name:     "opaque token",
			stored:   &models.StoredSession{Identity: ana, Token: "opaque", Cookie: "session=1"},
			wantAuth: true,
		},
		{
			name:     "role needs normalising",
			stored:   &models.StoredSession{Identity: models.Identity{ID: 1, Role: " Admin "}},
			wantAuth: true,
		},
		{
			name:      "unknown role",
			stored:    &models.StoredSession{Identity: models.Identity{ID: 1, Role: "superuser"}},
			wantClear: true,
		},
		{
			name:      "missing role",
			stored:    &models.StoredSession{Identity: models.Identity{ID: 1}},
			wantClear: true,
		},
		{
			name:      "expired jwt",
			stored:    &models.StoredSession{Identity: ana, Token: signed(t, now.Add(-time.Minute))},
			wantClear: true,
		},
		{
			name:     "live jwt",
			stored:   &models.StoredSession{Identity: ana, Token: signed(t, now.Add(time.Hour))},
			wantAuth: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			store := mocks.NewMockStore(ctrl)
			store.EXPECT().Load(gomock.Any()).Return(tt.stored, nil)
			if tt.wantClear {
				store.EXPECT().Clear(gomock.Any()).Return(nil)
			}

			m := session.NewManager(store).WithClock(func() time.Time { return now })
			require.NoError(t, m.Restore(context.Background()))

			got, ok := m.Current()
			require.Equal(t, tt.wantAuth, ok)
			if tt.wantAuth {
				_, valid := models.ParseRole(string(got.Role))
				require.True(t, valid)
				require.Equal(t, tt.stored.Identity.ID, got.ID)
			}
		})
	}
}

func TestManager_RestoreLoadError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	boom := errors.New("disk")
	store.EXPECT().Load(gomock.Any()).Return(nil, boom)

	m := session.NewManager(store)
	require.ErrorIs(t, m.Restore(context.Background()), boom)

	_, ok := m.Current()
	require.False(t, ok)
}

func TestManager_SignInSignOut(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	identity := models.Identity{ID: 9, Name: "Bo", Email: "bo@example.com", Role: "CLIENT"}
	want := models.StoredSession{
		Identity: models.Identity{ID: 9, Name: "Bo", Email: "bo@example.com", Role: models.RoleClient},
		Token:    "t",
		Cookie:   "session=x",
	}
	store.EXPECT().Save(gomock.Any(), want).Return(nil)
	store.EXPECT().Clear(gomock.Any()).Return(nil).Times(2)

	m := session.NewManager(store)

	var seen []*models.Identity
	unsubscribe := m.Subscribe(func(id *models.Identity) { seen = append(seen, id) })

	require.NoError(t, m.SignIn(context.Background(), identity, "t", "session=x"))
	got, ok := m.Current()
	require.True(t, ok)
	require.Equal(t, models.RoleClient, got.Role)

	token, cookie := m.Credentials()
	require.Equal(t, "t", token)
	require.Equal(t, "session=x", cookie)

	require.NoError(t, m.SignOut(context.Background()))
	require.NoError(t, m.SignOut(context.Background()))

	_, ok = m.Current()
	require.False(t, ok)
	token, cookie = m.Credentials()
	require.Empty(t, token)
	require.Empty(t, cookie)

	require.Len(t, seen, 2)
	require.Equal(t, models.RoleClient, seen[0].Role)
	require.Nil(t, seen[1])

	unsubscribe()
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, m.SignIn(context.Background(), identity, "", ""))
	require.Len(t, seen, 2)
}

func TestManager_SignInRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	m := session.NewManager(store)
	err := m.SignIn(context.Background(), models.Identity{ID: 1, Role: "root"}, "t", "")
	require.ErrorIs(t, err, session.ErrInvalidRole)

	_, ok := m.Current()
	require.False(t, ok)
}

func TestManager_SignInStoreFailureKeepsSignedOut(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("locked"))

	m := session.NewManager(store)
	require.Error(t, m.SignIn(context.Background(), models.Identity{ID: 1, Role: models.RoleAdmin}, "t", ""))

	_, ok := m.Current()
	require.False(t, ok)
}
