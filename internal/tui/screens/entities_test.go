package screens

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/config"
	"github.com/emilianohg/sitecrew/internal/models"
	"github.com/emilianohg/sitecrew/internal/sandbox"
)

func ptr[T any](v T) *T { return &v }

type staticCreds struct{ token, cookie string }

func (c *staticCreds) Credentials() (string, string) { return c.token, c.cookie }

// sandboxClient signs in to a fresh sandbox as email.
func sandboxClient(t *testing.T, email string) *api.Client {
	t.Helper()

	srv := httptest.NewServer(sandbox.New().Router())
	t.Cleanup(srv.Close)

	creds := &staticCreds{}
	c := api.New(api.Config{BaseURL: srv.URL + "/api"}, creds)
	res, err := c.Login(context.Background(), email, sandbox.DemoPassword)
	require.NoError(t, err)
	creds.token, creds.cookie = res.Token, res.Cookie
	return c
}

func TestBookingForm_RoundTrip(t *testing.T) {
	t.Parallel()

	b := models.Booking{
		ID:             7,
		ClientID:       ptr(int64(5)),
		Title:          "Deck repair",
		Description:    "Replace rotten boards",
		Location:       ptr("Hilltop"),
		RequiredSkills: ptr("Carpentry"),
		StartDate:      ptr("2025-04-07"),
		EndDate:        ptr("2025-04-09"),
		Budget:         decimal.NewNullDecimal(decimal.RequireFromString("950.25")),
		Status:         models.BookingPending,
	}

	in, err := bookingInput(adminBookingForm("Edit booking", b, nil))
	require.NoError(t, err)

	require.Equal(t, b.ClientID, in.ClientID)
	require.Equal(t, b.Title, in.Title)
	require.Equal(t, b.Description, in.Description)
	require.Equal(t, b.Location, in.Location)
	require.Equal(t, b.RequiredSkills, in.RequiredSkills)
	require.Equal(t, b.StartDate, in.StartDate)
	require.Equal(t, b.EndDate, in.EndDate)
	require.True(t, in.Budget.Valid)
	require.True(t, b.Budget.Decimal.Equal(in.Budget.Decimal))
	require.Equal(t, string(b.Status), in.Status)
}

func TestClientBookingForm_ClearedFieldsAreNull(t *testing.T) {
	t.Parallel()

	f := clientBookingForm("New booking", models.Booking{Title: "Shed", Description: "Build a shed"})
	require.NoError(t, f.Validate())

	in, err := bookingInput(f)
	require.NoError(t, err)
	require.Nil(t, in.ClientID)
	require.Nil(t, in.Location)
	require.Nil(t, in.StartDate)
	require.False(t, in.Budget.Valid)
	require.Empty(t, in.Status)
}

func TestAssignmentForm_RoundTrip(t *testing.T) {
	t.Parallel()

	a := models.Assignment{
		ID:         4,
		ProjectID:  1,
		EmployeeID: 3,
		RoleDesc:   ptr("Lead electrician"),
		StartDate:  ptr("2025-03-03"),
		EndDate:    nil,
		Status:     models.AssignmentWorking,
	}

	f := assignmentForm("Edit assignment", a, nil, nil)
	require.NoError(t, f.Validate())

	in, err := assignmentInput(f)
	require.NoError(t, err)
	require.Equal(t, api.AssignmentInput{
		ProjectID:  1,
		EmployeeID: 3,
		RoleDesc:   ptr("Lead electrician"),
		StartDate:  ptr("2025-03-03"),
		Status:     "working",
	}, in)
}

func TestAssignmentForm_RequiresProjectAndEmployee(t *testing.T) {
	t.Parallel()

	f := assignmentForm("New assignment", models.Assignment{}, nil, nil)
	require.EqualError(t, f.Validate(), "Project is required")
	require.Equal(t, string(models.AssignmentAssigned), f.Get("status"))
}

func TestEmployeeOptions_PreferLinkedUser(t *testing.T) {
	t.Parallel()

	opts := employeeOptions([]models.Employee{
		{ID: 1, UserID: ptr(int64(3)), Name: "Eli", Trade: ptr("Electrical")},
		{ID: 2, Name: "Sam"},
	})

	require.Equal(t, "3", opts[0].Value)
	require.Equal(t, "Eli (Electrical)", opts[0].Label)
	require.Equal(t, "2", opts[1].Value)
}

func TestSiteForm_RoundTrip(t *testing.T) {
	t.Parallel()

	s := models.Site{
		Name:      "Riverside Yard",
		Location:  "Riverside",
		Latitude:  decimal.NewNullDecimal(decimal.RequireFromString("51.5072")),
		Longitude: decimal.NullDecimal{},
		Status:    models.SiteClosed,
	}

	in, err := siteInput(siteForm("Edit site", s))
	require.NoError(t, err)
	require.Equal(t, "Riverside Yard", in.Name)
	require.True(t, s.Latitude.Decimal.Equal(in.Latitude.Decimal))
	require.False(t, in.Longitude.Valid)
	require.Equal(t, "closed", in.Status)
}

func TestUserForm_PasswordOnlyWhenSet(t *testing.T) {
	t.Parallel()

	u := models.User{ID: 2, Name: "Morgan Manager", Email: "manager@sitecrew.test", Role: models.RoleManager}

	edit := userForm("Edit user", u, false)
	require.NoError(t, edit.Validate())
	require.Nil(t, userInput(edit).Password)

	create := userForm("New user", models.User{}, true)
	create.Set("name", "Pat")
	create.Set("email", "pat@sitecrew.test")
	require.EqualError(t, create.Validate(), "Password is required")
}

func TestConflictCheck(t *testing.T) {
	t.Parallel()

	c := sandboxClient(t, "admin@sitecrew.test")
	ctx := context.Background()

	f := adminBookingForm("New booking", models.Booking{
		Location:  ptr("Riverside"),
		StartDate: ptr("2025-03-10"),
		EndDate:   ptr("2025-03-20"),
	}, nil)

	prompt, err := conflictCheck(ctx, c, 0, f)
	require.NoError(t, err)
	require.Equal(t, "1 other booking(s) overlap these dates at Riverside. Save anyway?", prompt)

	// Editing the overlapping booking itself is not a conflict.
	prompt, err = conflictCheck(ctx, c, 1, f)
	require.NoError(t, err)
	require.Empty(t, prompt)

	f.Set("end_date", "")
	prompt, err = conflictCheck(ctx, c, 0, f)
	require.NoError(t, err)
	require.Empty(t, prompt)
}

func TestClientBookings_EditOnlyWhilePending(t *testing.T) {
	t.Parallel()

	c := sandboxClient(t, "client@sitecrew.test")
	s := NewClientBookings(Deps{Client: c, Config: config.DefaultConfig()}).(*ResourceScreen[models.Booking])
	drain(t, s, s.Init())

	items := s.Controller().PageItems()
	require.NotEmpty(t, items)

	for i, b := range items {
		if b.Status == models.BookingPending {
			continue
		}
		s.cursor = i
		notices := press(t, s, "e")
		require.Len(t, notices, 1)
		require.Equal(t, Warning, notices[0].Level)
		require.False(t, s.Capturing())
		return
	}
	t.Fatal("seed has no settled booking for the client")
}

func TestManagerBookings_StatusAndUnassignedCombine(t *testing.T) {
	t.Parallel()

	c := sandboxClient(t, "manager@sitecrew.test")
	s := NewManagerBookings(Deps{Client: c, Config: config.DefaultConfig()}).(*ResourceScreen[models.Booking])
	drain(t, s, s.Init())

	s.Controller().SetFacet("status", string(models.BookingPending))
	s.Controller().SetFacet("unassigned", "1")
	require.Empty(t, drain(t, s, s.Update(RefreshMsg{})))

	// The backend drops the status filter when asked for unassigned
	// bookings, so both rejected and pending rows come back.
	require.Len(t, s.Controller().Items(), 2)

	visible := s.Controller().Visible()
	require.Len(t, visible, 1)
	require.Equal(t, int64(2), visible[0].ID)
	require.Equal(t, models.BookingPending, visible[0].Status)
}

func TestMonthRange(t *testing.T) {
	t.Parallel()

	start, end := monthRange(time.Date(2024, 2, 17, 9, 0, 0, 0, time.UTC))
	require.Equal(t, "2024-02-01", start)
	require.Equal(t, "2024-02-29", end)
}

func TestReportCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{nil, "—"},
		{float64(12.5), "12.5"},
		{float64(40), "40"},
		{"", "—"},
		{"2025-06-30", "Jun 30, 2025"},
		{"First aid", "First aid"},
		{true, "yes"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, reportCell(tt.in), "%v", tt.in)
	}
}

func TestStatLines(t *testing.T) {
	t.Parallel()

	lines := statLines(models.Stats{
		"users":            decimal.NewFromInt(5),
		"bookings_pending": decimal.NewFromInt(1),
	})

	require.Equal(t, []statLine{
		{label: "Bookings pending", value: decimal.NewFromInt(1)},
		{label: "Users", value: decimal.NewFromInt(5)},
	}, lines)
}

func TestCountByStatus(t *testing.T) {
	t.Parallel()

	tasks := []models.Task{
		{ID: 1, Status: models.AssignmentWorking},
		{ID: 2, Status: models.AssignmentWorking},
		{ID: 3, Status: models.AssignmentCompleted},
	}

	lines := countByStatus("tasks", tasks, models.AssignmentStatuses, func(t models.Task) string { return string(t.Status) })

	got := make(map[string]string, len(lines))
	for _, l := range lines {
		got[l.label] = l.value.String()
	}
	require.Equal(t, map[string]string{
		"Total tasks": "3",
		"Assigned":    "0",
		"Working":     "2",
		"Completed":   "1",
		"Rejected":    "0",
	}, got)
	require.Equal(t, "Total tasks", lines[0].label)
}
