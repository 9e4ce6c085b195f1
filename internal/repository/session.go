package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/emilianohg/sitecrew/internal/models"
)

// SessionRepo persists the single signed-in session row.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Load returns the stored session, or nil when nobody is signed in.
func (r *SessionRepo) Load(ctx context.Context) (*models.StoredSession, error) {
	var s models.StoredSession
	var role string

	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, name, email, role, token, cookie
		FROM session
		WHERE id = 1
	`).Scan(&s.Identity.ID, &s.Identity.Name, &s.Identity.Email, &role, &s.Token, &s.Cookie)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.Identity.Role = models.Role(role)
	return &s, nil
}

// Save replaces whatever session was stored.
func (r *SessionRepo) Save(ctx context.Context, s models.StoredSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, user_id, name, email, role, token, cookie, created_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			token = excluded.token,
			cookie = excluded.cookie,
			created_at = excluded.created_at
	`, s.Identity.ID, s.Identity.Name, s.Identity.Email, string(s.Identity.Role), s.Token, s.Cookie)
	return err
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (r *SessionRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM session")
	return err
}
