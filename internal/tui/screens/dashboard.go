package screens

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/display"
	"github.com/emilianohg/sitecrew/internal/models"
)

type statLine struct {
	label string
	value decimal.Decimal
}

type Dashboard struct {
	deps   Deps
	role   models.Role
	load   func(ctx context.Context) ([]statLine, error)
	width  int
	height int

	lines   []statLine
	loading bool
	err     error
	gen     uint64
	cancel  context.CancelFunc
}

type dashboardDataMsg struct {
	screen *Dashboard
	gen    uint64
	lines  []statLine
	err    error
}

// NewDashboard builds the landing screen for role. Admins and managers
// get the backend's counters; employees and clients get counts derived
// from their own tasks or bookings.
func NewDashboard(d Deps, role models.Role) *Dashboard {
	dash := &Dashboard{deps: d, role: role, loading: true}

	switch role {
	case models.RoleEmployee:
		dash.load = func(ctx context.Context) ([]statLine, error) {
			tasks, err := d.Client.EmployeeTasks(ctx)
			if err != nil {
				return nil, err
			}
			return countByStatus("tasks", tasks, models.AssignmentStatuses, func(t models.Task) string { return string(t.Status) }), nil
		}
	case models.RoleClient:
		dash.load = func(ctx context.Context) ([]statLine, error) {
			bookings, err := d.Client.MyBookings(ctx)
			if err != nil {
				return nil, err
			}
			return countByStatus("bookings", bookings, models.BookingStatuses, func(b models.Booking) string { return string(b.Status) }), nil
		}
	default:
		dash.load = func(ctx context.Context) ([]statLine, error) {
			stats, err := d.Client.Dashboard(ctx, role)
			if err != nil {
				return nil, err
			}
			return statLines(stats), nil
		}
	}

	return dash
}

// countByStatus is a total followed by one counter per known status.
func countByStatus[T any](noun string, items []T, statuses []string, status func(T) string) []statLine {
	counts := make(map[string]int64, len(statuses))
	for _, it := range items {
		counts[status(it)]++
	}

	lines := []statLine{{label: "Total " + noun, value: decimal.NewFromInt(int64(len(items)))}}
	for _, s := range statuses {
		lines = append(lines, statLine{label: humanize(s), value: decimal.NewFromInt(counts[s])})
	}
	return lines
}

func statLines(stats models.Stats) []statLine {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]statLine, len(keys))
	for i, k := range keys {
		lines[i] = statLine{label: humanize(k), value: stats[k]}
	}
	return lines
}

// humanize turns a counter key such as "bookings_pending" into
// "Bookings pending".
func humanize(key string) string {
	s := strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func (d *Dashboard) Capturing() bool {
	return false
}

func (d *Dashboard) Close() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Dashboard) Init() tea.Cmd {
	d.Close()
	d.loading = true
	d.err = nil
	d.gen++

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	gen := d.gen
	load := d.load

	return func() tea.Msg {
		lines, err := load(ctx)
		return dashboardDataMsg{screen: d, gen: gen, lines: lines, err: err}
	}
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.screen != d || msg.gen != d.gen {
			return nil
		}
		d.cancel = nil
		d.loading = false
		d.err = msg.err
		if msg.err == nil {
			d.lines = msg.lines
		}
		if api.IsAuthError(msg.err) {
			return NotifyErr(msg.err)
		}
		return nil

	case RefreshMsg:
		return d.Init()

	case tea.KeyMsg:
		if msg.String() == "r" {
			return d.Init()
		}
	}

	return nil
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("SITECREW"))
	b.WriteString("\n")

	subtitle := humanize(string(d.role)) + " dashboard"
	if id, ok := d.deps.Session.Current(); ok {
		subtitle = fmt.Sprintf("Welcome, %s  ·  %s", id.Name, subtitle)
	}
	b.WriteString(SubtitleStyle.Render(subtitle))
	b.WriteString("\n\n")

	switch {
	case d.loading:
		b.WriteString("Loading...\n")
	case d.err != nil:
		b.WriteString(ErrorStyle.Render("Error: " + api.Message(d.err)))
		b.WriteString("\n")
	case len(d.lines) == 0:
		b.WriteString(DimStyle.Render("No counters yet."))
		b.WriteString("\n")
	default:
		width := 0
		for _, l := range d.lines {
			width = max(width, len([]rune(l.label)))
		}
		rows := make([]string, len(d.lines))
		for i, l := range d.lines {
			rows[i] = fmt.Sprintf("%s  %s", display.Pad(l.label+":", width+1), d.formatValue(l.value))
		}
		b.WriteString(BoxStyle.Render(strings.Join(rows, "\n")))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[r] Refresh"))
	return b.String()
}

func (d *Dashboard) formatValue(v decimal.Decimal) string {
	if v.IsZero() {
		return DimStyle.Render("0")
	}
	return SuccessStyle.Render(v.String())
}
