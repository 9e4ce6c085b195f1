package api

import (
	"context"
	"errors"

	"github.com/emilianohg/sitecrew/internal/models"
)

// Dashboard loads the counters for role. Admin and manager use the shared
// /dashboard endpoint and fall back to /{role}/dashboard when it is absent.
func (c *Client) Dashboard(ctx context.Context, role models.Role) (models.Stats, error) {
	var stats models.Stats

	err := c.get(ctx, "/dashboard", nil, &stats)
	if errors.Is(err, ErrNotFound) {
		stats = nil
		err = c.get(ctx, "/"+string(role)+"/dashboard", nil, &stats)
	}
	if err != nil {
		return nil, err
	}

	if stats == nil {
		stats = models.Stats{}
	}
	return stats, nil
}
