package sandbox

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, email string) string {
	t.Helper()

	rec := call(t, h, http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": DemoPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	t.Parallel()

	h := New().Router()
	rec := call(t, h, http.MethodPost, "/api/login", "", map[string]string{"email": "ADMIN@sitecrew.test", "password": DemoPassword})
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sessionCookie, cookies[0].Name)
	require.NotContains(t, rec.Body.String(), "password\"")

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleGating(t *testing.T) {
	t.Parallel()

	h := New().Router()
	admin := login(t, h, "admin@sitecrew.test")
	manager := login(t, h, "manager@sitecrew.test")
	client := login(t, h, "client@sitecrew.test")

	tests := []struct {
		token string
		path  string
		want  int
	}{
		{"", "/api/projects", http.StatusUnauthorized},
		{"garbage", "/api/projects", http.StatusUnauthorized},
		{client, "/api/projects", http.StatusOK},
		{client, "/api/sites", http.StatusForbidden},
		{client, "/api/assignments/all", http.StatusForbidden},
		{manager, "/api/assignments/all", http.StatusOK},
		{manager, "/api/sites", http.StatusForbidden},
		{manager, "/api/payroll/calculate?start=2025-03-01&end=2025-03-31", http.StatusForbidden},
		{admin, "/api/sites", http.StatusOK},
		{admin, "/api/employee/tasks", http.StatusForbidden},
	}

	for _, tt := range tests {
		rec := call(t, h, http.MethodGet, tt.path, tt.token, nil)
		require.Equal(t, tt.want, rec.Code, tt.path)
	}
}

func TestExpiredToken(t *testing.T) {
	t.Parallel()

	s := New()
	h := s.Router()
	token := login(t, h, "admin@sitecrew.test")

	s.now = func() time.Time { return time.Now().Add(tokenTTL + time.Minute) }

	rec := call(t, h, http.MethodGet, "/api/projects", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"msg": "Not logged in"}`, rec.Body.String())
}

func TestAdminDeleteBooking_Cascades(t *testing.T) {
	t.Parallel()

	s := New()
	h := s.Router()
	admin := login(t, h, "admin@sitecrew.test")

	rec := call(t, h, http.MethodDelete, "/api/admin/bookings/1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Nil(t, s.db.bookings.find(1))
	require.Empty(t, s.db.projects.rows)
	require.Empty(t, s.db.assignments.rows)

	rec = call(t, h, http.MethodDelete, "/api/admin/bookings/1", admin, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckConflict(t *testing.T) {
	t.Parallel()

	h := New().Router()
	admin := login(t, h, "admin@sitecrew.test")

	decode := func(rec *httptest.ResponseRecorder) []record {
		var out struct {
			Conflicts []record `json:"conflicts"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out.Conflicts
	}

	rec := call(t, h, http.MethodPost, "/api/bookings/check_conflict", admin,
		map[string]string{"location": "riverside", "start_time": "2025-03-10", "end_time": "2025-03-20"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(rec), 1)

	rec = call(t, h, http.MethodPost, "/api/bookings/check_conflict", admin,
		map[string]string{"location": "Riverside", "start_time": "2025-03-15", "end_time": "2025-03-20"})
	require.Empty(t, decode(rec))

	rec = call(t, h, http.MethodPost, "/api/bookings/check_conflict", admin, map[string]string{"location": "Riverside"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelBooking_OnlyPending(t *testing.T) {
	t.Parallel()

	s := New()
	h := s.Router()
	client := login(t, h, "client@sitecrew.test")

	rec := call(t, h, http.MethodPost, "/api/bookings/1/cancel", client, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/bookings/2/cancel", client, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "rejected", s.db.bookings.find(2).str("status"))

	other := login(t, h, "eli@sitecrew.test")
	rec = call(t, h, http.MethodPost, "/api/bookings/3/cancel", other, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOverlapDays(t *testing.T) {
	t.Parallel()

	d := func(s string) time.Time {
		v, ok := parseDay(s)
		require.True(t, ok, s)
		return v
	}

	require.Equal(t, 5, overlapDays(d("2025-03-03"), d("2025-03-07"), d("2025-03-03"), d("2025-03-07")))
	require.Equal(t, 2, overlapDays(d("2025-03-03"), d("2025-03-07"), d("2025-03-06"), d("2025-03-31")))
	require.Equal(t, 0, overlapDays(d("2025-03-03"), d("2025-03-07"), d("2025-03-08"), d("2025-03-09")))
	require.Equal(t, 1, overlapDays(d("Mon, 03 Mar 2025 00:00:00 GMT"), d("2025-03-03"), d("2025-03-01"), d("2025-03-31")))
}

func TestPayroll_Overtime(t *testing.T) {
	t.Parallel()

	s := New()
	// Eli works every day of one week: 56 hours against a 40 hour cap.
	a := s.db.assignments.find(1)
	a["start_date"] = "2025-03-03"
	a["end_date"] = "2025-03-09"

	start, _ := parseDay("2025-03-03")
	end, _ := parseDay("2025-03-09")
	lines := s.payroll(start, end)
	require.Len(t, lines, 2)

	var eli payrollLine
	for _, l := range lines {
		if l.EmployeeID == 3 {
			eli = l
		}
	}
	require.Equal(t, "40", eli.Hours.String())
	require.Equal(t, "16", eli.OvertimeHours.String())
	require.Equal(t, "1700.00", eli.Base.StringFixed(2))
	require.Equal(t, "1020.00", eli.OvertimePay.StringFixed(2))
	require.Equal(t, "2720.00", eli.Total.StringFixed(2))
}

func TestPayroll_RequiresRange(t *testing.T) {
	t.Parallel()

	h := New().Router()
	admin := login(t, h, "admin@sitecrew.test")

	rec := call(t, h, http.MethodGet, "/api/payroll/calculate?start=2025-03-01", admin, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"error"`)
}
