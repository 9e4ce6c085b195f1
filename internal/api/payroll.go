package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/emilianohg/sitecrew/internal/models"
)

type payrollResponse struct {
	Payroll []models.PayrollRow `json:"payroll"`
}

func payrollQuery(start, end string) url.Values {
	return url.Values{"start": {start}, "end": {end}}
}

func (c *Client) CalculatePayroll(ctx context.Context, start, end string) ([]models.PayrollRow, error) {
	var out payrollResponse
	if err := c.get(ctx, "/payroll/calculate", payrollQuery(start, end), &out); err != nil {
		return nil, err
	}
	if out.Payroll == nil {
		out.Payroll = []models.PayrollRow{}
	}
	return out.Payroll, nil
}

// PayrollFileName is the name the export is saved under.
func PayrollFileName(start, end string) string {
	return fmt.Sprintf("payroll_%s_to_%s.csv", start, end)
}

// ExportPayroll streams the CSV export into dir and returns the file path.
// A partially written file is removed on failure.
func (c *Client) ExportPayroll(ctx context.Context, start, end, dir string) (path string, err error) {
	resp, err := c.send(ctx, http.MethodGet, "/payroll/export", payrollQuery(start, end), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}

	path = filepath.Join(dir, PayrollFileName(start, end))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}

	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close export: %w", closeErr)
		}
		if err != nil {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				slog.WarnContext(ctx, "remove partial export", "path", path, "error", rmErr)
			}
			path = ""
		}
	}()

	if _, err := io.Copy(f, resp.Body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: download export: %w", ErrTransport, err)
	}

	return path, nil
}
