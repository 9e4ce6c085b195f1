package sandbox

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	hoursPerDay     = 8
	hoursPerWeek    = 40
	overtimeFactor  = "1.5"
	dayLayoutBackup = http.TimeFormat
)

var billable = map[string]bool{"working": true, "completed": true}

func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.DateOnly, dayLayoutBackup, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// overlapDays counts the calendar days two inclusive ranges share.
func overlapDays(aStart, aEnd, bStart, bEnd time.Time) int {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// assignedDays is the length of an assignment, clipped to [from, to] when
// both are set.
func assignedDays(a record, from, to time.Time) int {
	start, ok1 := parseDay(a.str("start_date"))
	end, ok2 := parseDay(a.str("end_date"))
	if !ok1 || !ok2 {
		return 0
	}
	if from.IsZero() || to.IsZero() {
		return overlapDays(start, end, start, end)
	}
	return overlapDays(start, end, from, to)
}

func (s *Server) reportUtilization(w http.ResponseWriter, r *http.Request) {
	s.db.mu.Lock()
	rows := []record{}
	for _, u := range s.db.users.where(func(u record) bool { return u.str("role") == "employee" }) {
		hours := 0
		for _, a := range s.db.assignments.rows {
			if a.int("employee_id") == u.int("id") {
				hours += assignedDays(a, time.Time{}, time.Time{}) * hoursPerDay
			}
		}
		rows = append(rows, record{"employee_id": u["id"], "name": u["name"], "total_hours": hours})
	}
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, map[string]any{"utilization": rows})
}

func (s *Server) reportAttendance(w http.ResponseWriter, r *http.Request) {
	s.db.mu.Lock()
	rows := []record{}
	for _, u := range s.db.users.where(func(u record) bool { return u.str("role") == "employee" }) {
		days := 0
		for _, a := range s.db.assignments.rows {
			if a.int("employee_id") == u.int("id") && billable[a.str("status")] {
				days += assignedDays(a, time.Time{}, time.Time{})
			}
		}
		rows = append(rows, record{"employee_id": u["id"], "days_present": days, "total_hours": days * hoursPerDay})
	}
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, map[string]any{"attendance": rows})
}

// reportLabourCost attributes billable hours to the site whose location
// matches the booking behind each project.
func (s *Server) reportLabourCost(w http.ResponseWriter, r *http.Request) {
	s.db.mu.Lock()
	rows := []record{}
	for _, site := range s.db.sites.rows {
		cost := decimal.Zero
		location := strings.ToLower(site.str("location"))
		for _, a := range s.db.assignments.rows {
			if !billable[a.str("status")] {
				continue
			}
			p := s.db.projects.find(a.int("project_id"))
			if p == nil {
				continue
			}
			b := s.db.bookings.find(p.int("booking_id"))
			if b == nil || strings.ToLower(b.str("location")) != location {
				continue
			}
			hours := decimal.NewFromInt(int64(assignedDays(a, time.Time{}, time.Time{}) * hoursPerDay))
			cost = cost.Add(hours.Mul(s.rateFor(a.int("employee_id"))))
		}
		rows = append(rows, record{"site_id": site["id"], "site_name": site["name"], "labour_cost": cost.StringFixed(2)})
	}
	s.db.mu.Unlock()

	sendJSON(r.Context(), w, http.StatusOK, map[string]any{"labour_cost_by_project": rows})
}

func (s *Server) reportCertExpiry(w http.ResponseWriter, r *http.Request) {
	sendJSON(r.Context(), w, http.StatusOK, map[string]any{"certificates": []record{}})
}

// rateFor looks up the hourly rate of the employee record linked to user.
// Callers hold the lock.
func (s *Server) rateFor(userID int64) decimal.Decimal {
	for _, e := range s.db.employees.rows {
		if e.int("user_id") != userID {
			continue
		}
		rate, err := decimal.NewFromString(e.str("hourly_rate"))
		if err == nil {
			return rate
		}
	}
	return decimal.Zero
}

type payrollLine struct {
	EmployeeID    int64           `json:"employee_id"`
	Name          string          `json:"name"`
	Hours         decimal.Decimal `json:"hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	Base          decimal.Decimal `json:"base"`
	OvertimePay   decimal.Decimal `json:"overtime_pay"`
	Total         decimal.Decimal `json:"total"`
}

func (s *Server) payroll(start, end time.Time) []payrollLine {
	weeks := (overlapDays(start, end, start, end) + 6) / 7
	limit := decimal.NewFromInt(int64(weeks * hoursPerWeek))
	factor := decimal.RequireFromString(overtimeFactor)

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	lines := []payrollLine{}
	for _, e := range s.db.employees.rows {
		uid := e.int("user_id")
		if uid == 0 {
			continue
		}

		days := 0
		for _, a := range s.db.assignments.rows {
			if a.int("employee_id") == uid && billable[a.str("status")] {
				days += assignedDays(a, start, end)
			}
		}

		hours := decimal.NewFromInt(int64(days * hoursPerDay))
		overtime := decimal.Max(decimal.Zero, hours.Sub(limit))
		regular := hours.Sub(overtime)
		rate := s.rateFor(uid)

		base := regular.Mul(rate).Round(2)
		otPay := overtime.Mul(rate).Mul(factor).Round(2)

		lines = append(lines, payrollLine{
			EmployeeID:    uid,
			Name:          e.str("name"),
			Hours:         regular,
			OvertimeHours: overtime,
			Base:          base,
			OvertimePay:   otPay,
			Total:         base.Add(otPay),
		})
	}
	return lines
}

func payrollRange(r *http.Request) (time.Time, time.Time, bool) {
	start, ok1 := parseDay(r.URL.Query().Get("start"))
	end, ok2 := parseDay(r.URL.Query().Get("end"))
	if !ok1 || !ok2 || end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (s *Server) payrollCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	start, end, ok := payrollRange(r)
	if !ok {
		sendJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "start and end dates are required (YYYY-MM-DD)"})
		return
	}

	sendJSON(ctx, w, http.StatusOK, map[string]any{"payroll": s.payroll(start, end)})
}

func (s *Server) payrollExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	start, end, ok := payrollRange(r)
	if !ok {
		sendJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "start and end dates are required (YYYY-MM-DD)"})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payroll_%s_to_%s.csv"`,
		start.Format(time.DateOnly), end.Format(time.DateOnly)))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"employee_id", "name", "hours", "overtime_hours", "base", "overtime_pay", "total"})
	for _, l := range s.payroll(start, end) {
		_ = cw.Write([]string{
			fmt.Sprint(l.EmployeeID), l.Name, l.Hours.String(), l.OvertimeHours.String(),
			l.Base.StringFixed(2), l.OvertimePay.StringFixed(2), l.Total.StringFixed(2),
		})
	}
	cw.Flush()
}
