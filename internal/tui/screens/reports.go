package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/display"
	"github.com/emilianohg/sitecrew/internal/listing"
	"github.com/emilianohg/sitecrew/internal/models"
)

const reportColumnWidth = 18

type reportTab struct {
	report api.Report
	rows   []models.ReportRow
	err    error
}

type Reports struct {
	deps   Deps
	width  int
	height int

	tabs    []reportTab
	active  int
	page    int
	loading bool
	gen     uint64
	cancel  context.CancelFunc
}

type reportsDataMsg struct {
	screen *Reports
	gen    uint64
	tabs   []reportTab
	// err is set when the session was rejected; the other reports are
	// cancelled then.
	err error
}

func NewReports(d Deps) *Reports {
	return &Reports{deps: d, loading: true}
}

func (r *Reports) SetSize(width, height int) {
	r.width = width
	r.height = height
}

func (r *Reports) Capturing() bool {
	return false
}

func (r *Reports) Close() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Init loads every report at once. One failing report does not hide the
// others: each tab keeps its own error. Only an auth failure stops the rest.
func (r *Reports) Init() tea.Cmd {
	r.Close()
	r.loading = true
	r.gen++

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	gen := r.gen
	c := r.deps.Client

	return func() tea.Msg {
		tabs := make([]reportTab, len(api.Reports))

		g, gctx := errgroup.WithContext(ctx)
		for i, rep := range api.Reports {
			g.Go(func() error {
				rows, err := c.Report(gctx, rep)
				tabs[i] = reportTab{report: rep, rows: rows, err: err}
				if api.IsAuthError(err) {
					return err
				}
				return nil
			})
		}
		err := g.Wait()

		return reportsDataMsg{screen: r, gen: gen, tabs: tabs, err: err}
	}
}

func (r *Reports) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.screen != r || msg.gen != r.gen {
			return nil
		}
		r.cancel = nil
		r.loading = false
		r.tabs = msg.tabs
		r.page = 1
		if msg.err != nil {
			return NotifyErr(msg.err)
		}
		return nil

	case RefreshMsg:
		return r.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "right", "l":
			if n := len(api.Reports); n > 0 {
				r.active = (r.active + 1) % n
				r.page = 1
			}
		case "shift+tab", "left", "h":
			if n := len(api.Reports); n > 0 {
				r.active = (r.active - 1 + n) % n
				r.page = 1
			}
		case "down", "j":
			if r.page < r.totalPages() {
				r.page++
			}
		case "up", "k":
			if r.page > 1 {
				r.page--
			}
		case "r":
			return r.Init()
		}
	}

	return nil
}

func (r *Reports) current() (reportTab, bool) {
	if r.active < 0 || r.active >= len(r.tabs) {
		return reportTab{}, false
	}
	return r.tabs[r.active], true
}

func (r *Reports) pageSize() int {
	if r.deps.Config != nil && r.deps.Config.PageSize > 0 {
		return r.deps.Config.PageSize
	}
	return 10
}

func (r *Reports) totalPages() int {
	tab, ok := r.current()
	if !ok {
		return 1
	}
	return listing.TotalPages(len(tab.rows), r.pageSize())
}

func (r *Reports) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("REPORTS"))
	b.WriteString("\n")

	names := make([]string, len(api.Reports))
	for i, rep := range api.Reports {
		if i == r.active {
			names[i] = SelectedStyle.Render("[" + rep.Name + "]")
		} else {
			names[i] = DimStyle.Render(" " + rep.Name + " ")
		}
	}
	b.WriteString(strings.Join(names, " "))
	b.WriteString("\n\n")

	tab, ok := r.current()
	switch {
	case r.loading:
		b.WriteString("Loading...\n")
	case !ok:
		b.WriteString(DimStyle.Render("Nothing to show."))
		b.WriteString("\n")
	case tab.err != nil:
		b.WriteString(ErrorStyle.Render("Error: " + api.Message(tab.err)))
		b.WriteString("\n")
	case len(tab.rows) == 0:
		b.WriteString(DimStyle.Render("No rows in this report."))
		b.WriteString("\n")
	default:
		b.WriteString(r.viewTable(tab))
	}

	b.WriteString(HelpStyle.Render("[tab/←→] Report  [↑↓] Page  [r] Refresh"))
	return b.String()
}

func (r *Reports) viewTable(tab reportTab) string {
	var b strings.Builder

	header := make([]string, len(tab.report.Columns))
	for i, c := range tab.report.Columns {
		header[i] = display.Pad(c.Title, reportColumnWidth)
	}
	b.WriteString(HeaderStyle.Render(strings.Join(header, "  ")))
	b.WriteString("\n")

	for _, row := range listing.Paginate(tab.rows, r.page, r.pageSize()) {
		cells := make([]string, len(tab.report.Columns))
		for i, c := range tab.report.Columns {
			cells[i] = display.Pad(reportCell(row[c.Key]), reportColumnWidth)
		}
		b.WriteString(NormalStyle.Render(strings.Join(cells, "  ")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Page %d of %d  (%d rows)\n", r.page, r.totalPages(), len(tab.rows)))
	return b.String()
}

// reportCell renders one untyped value. Numbers go through decimal so
// 12.5 stays 12.5 rather than 12.500000.
func reportCell(v any) string {
	switch v := v.(type) {
	case nil:
		return display.Placeholder
	case float64:
		return decimal.NewFromFloat(v).String()
	case string:
		if strings.TrimSpace(v) == "" {
			return display.Placeholder
		}
		if _, ok := display.ParseDate(v); ok {
			return display.Date(&v)
		}
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(v)
	}
}
