package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emilianohg/sitecrew/internal/models"
)

type Column struct {
	Key   string
	Title string
}

// Report describes one server-computed report: where it lives, the key its
// rows come wrapped in, and the columns worth showing.
type Report struct {
	Name     string
	Path     string
	Envelope string
	Columns  []Column
}

var Reports = []Report{
	{
		Name:     "Utilization",
		Path:     "/reports/utilization",
		Envelope: "utilization",
		Columns:  []Column{{"employee_id", "Employee ID"}, {"name", "Employee"}, {"total_hours", "Total Hours"}},
	},
	{
		Name:     "Labour Cost",
		Path:     "/reports/labour_cost_by_project",
		Envelope: "labour_cost_by_project",
		Columns:  []Column{{"site_id", "Site ID"}, {"site_name", "Site"}, {"labour_cost", "Labour Cost"}},
	},
	{
		Name:     "Attendance",
		Path:     "/reports/attendance_summary",
		Envelope: "attendance",
		Columns:  []Column{{"employee_id", "Employee ID"}, {"days_present", "Days Present"}, {"total_hours", "Total Hours"}},
	},
	{
		Name:     "Certificates",
		Path:     "/reports/cert_expiry",
		Envelope: "certificates",
		Columns:  []Column{{"user_id", "User ID"}, {"name", "Employee"}, {"doc_type", "Document Type"}, {"expiry_date", "Expiry Date"}},
	},
}

// Report loads the rows of r. A bare array is accepted as well as the
// wrapped form.
func (c *Client) Report(ctx context.Context, r Report) ([]models.ReportRow, error) {
	var raw json.RawMessage
	if err := c.get(ctx, r.Path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeReport(raw, r.Envelope)
}

func decodeReport(raw json.RawMessage, envelope string) ([]models.ReportRow, error) {
	rows := []models.ReportRow{}
	if len(raw) == 0 {
		return rows, nil
	}

	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		return rows, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	inner, ok := wrapped[envelope]
	if !ok || string(inner) == "null" {
		return rows, nil
	}
	if err := json.Unmarshal(inner, &rows); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", envelope, err)
	}
	return rows, nil
}
