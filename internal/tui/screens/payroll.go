package screens

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/display"
	"github.com/emilianohg/sitecrew/internal/form"
	"github.com/emilianohg/sitecrew/internal/listing"
	"github.com/emilianohg/sitecrew/internal/models"
)

type payrollMode int

const (
	payrollModeRange payrollMode = iota
	payrollModeCalculating
	payrollModeResult
	payrollModeExporting
)

type Payroll struct {
	deps   Deps
	now    func() time.Time
	width  int
	height int

	mode   payrollMode
	editor *formEditor
	start  string
	end    string
	rows   []models.PayrollRow
	totals models.PayrollTotals
	page   int
	err    error

	gen    uint64
	cancel context.CancelFunc
}

type payrollCalculatedMsg struct {
	screen *Payroll
	gen    uint64
	rows   []models.PayrollRow
	err    error
}

type payrollExportedMsg struct {
	screen *Payroll
	gen    uint64
	path   string
	err    error
}

func NewPayroll(d Deps) *Payroll {
	return &Payroll{deps: d, now: time.Now}
}

// monthRange is the first and last day of t's month.
func monthRange(t time.Time) (string, string) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format(time.DateOnly), last.Format(time.DateOnly)
}

func (p *Payroll) rangeForm() *form.Form {
	start, end := p.start, p.end
	if start == "" || end == "" {
		start, end = monthRange(p.now())
	}
	return form.New("Pay period",
		form.Field{Key: "start", Label: "Start date", Kind: form.Date, Value: start, Required: true},
		form.Field{Key: "end", Label: "End date", Kind: form.Date, Value: end, Required: true},
	)
}

func (p *Payroll) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *Payroll) Capturing() bool {
	return p.mode == payrollModeRange
}

func (p *Payroll) Close() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Payroll) Init() tea.Cmd {
	p.Close()
	p.mode = payrollModeRange
	p.err = nil
	p.editor = newFormEditor(p.rangeForm())
	return p.editor.Init()
}

func (p *Payroll) begin() (context.Context, uint64) {
	p.Close()
	p.gen++
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	return ctx, p.gen
}

func (p *Payroll) calculate() tea.Cmd {
	ctx, gen := p.begin()
	p.mode = payrollModeCalculating
	p.err = nil

	c, start, end := p.deps.Client, p.start, p.end
	return func() tea.Msg {
		rows, err := c.CalculatePayroll(ctx, start, end)
		return payrollCalculatedMsg{screen: p, gen: gen, rows: rows, err: err}
	}
}

func (p *Payroll) export() tea.Cmd {
	ctx, gen := p.begin()
	p.mode = payrollModeExporting

	c, start, end, dir := p.deps.Client, p.start, p.end, p.deps.Config.ExportsDir
	return func() tea.Msg {
		path, err := c.ExportPayroll(ctx, start, end, dir)
		return payrollExportedMsg{screen: p, gen: gen, path: path, err: err}
	}
}

func (p *Payroll) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case payrollCalculatedMsg:
		if msg.screen != p || msg.gen != p.gen {
			return nil
		}
		p.cancel = nil
		if msg.err != nil {
			p.mode = payrollModeRange
			p.editor.Fail(api.Message(msg.err))
			if api.IsAuthError(msg.err) {
				return NotifyErr(msg.err)
			}
			return nil
		}
		p.rows = msg.rows
		p.totals = models.SumPayroll(msg.rows)
		p.page = 1
		p.mode = payrollModeResult
		return nil

	case payrollExportedMsg:
		if msg.screen != p || msg.gen != p.gen {
			return nil
		}
		p.cancel = nil
		p.mode = payrollModeResult
		if msg.err != nil {
			return NotifyErr(msg.err)
		}
		return Notify(Success, "Payroll exported to "+msg.path)

	case RefreshMsg:
		if p.mode == payrollModeResult {
			return p.calculate()
		}
		return nil

	case tea.KeyMsg:
		switch p.mode {
		case payrollModeRange:
			return p.handleRangeKey(msg)
		case payrollModeResult:
			return p.handleResultKey(msg)
		}
	}

	if p.mode == payrollModeRange && p.editor != nil {
		return p.editor.Tick(msg)
	}
	return nil
}

func (p *Payroll) handleRangeKey(msg tea.KeyMsg) tea.Cmd {
	submit, cancel, cmd := p.editor.Update(msg)
	if cancel {
		if len(p.rows) > 0 && p.start != "" {
			p.mode = payrollModeResult
			return nil
		}
		p.editor = newFormEditor(p.rangeForm())
		return p.editor.Init()
	}
	if !submit {
		return cmd
	}

	f := p.editor.form
	if err := f.Validate(); err != nil {
		p.editor.Fail(err.Error())
		return nil
	}
	start, _ := display.ParseDate(f.Get("start"))
	end, _ := display.ParseDate(f.Get("end"))
	if end.Before(start) {
		p.editor.Fail("End date must not be before the start date")
		return nil
	}
	p.editor.Fail("")

	p.start, p.end = start.Format(time.DateOnly), end.Format(time.DateOnly)
	return p.calculate()
}

func (p *Payroll) handleResultKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "e":
		return p.export()
	case "n", "esc":
		p.mode = payrollModeRange
		p.editor = newFormEditor(p.rangeForm())
		return p.editor.Init()
	case "r":
		return p.calculate()
	case "down", "j", "right", "l":
		if p.page < p.totalPages() {
			p.page++
		}
	case "up", "k", "left", "h":
		if p.page > 1 {
			p.page--
		}
	}
	return nil
}

func (p *Payroll) pageSize() int {
	if p.deps.Config != nil && p.deps.Config.PageSize > 0 {
		return p.deps.Config.PageSize
	}
	return 10
}

func (p *Payroll) totalPages() int {
	return listing.TotalPages(len(p.rows), p.pageSize())
}

func (p *Payroll) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("PAYROLL"))
	b.WriteString("\n")

	switch p.mode {
	case payrollModeRange:
		b.WriteString(p.editor.View())
	case payrollModeCalculating:
		b.WriteString(fmt.Sprintf("Calculating %s to %s...\n", p.start, p.end))
	case payrollModeResult, payrollModeExporting:
		b.WriteString(p.viewResult())
	}

	return b.String()
}

func (p *Payroll) viewResult() string {
	var b strings.Builder

	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Period %s to %s", p.start, p.end)))
	b.WriteString("\n")

	if len(p.rows) == 0 {
		b.WriteString(DimStyle.Render("No hours were worked in this period."))
		b.WriteString("\n")
	} else {
		cols := []struct {
			title string
			width int
		}{{"ID", 5}, {"Employee", 20}, {"Hours", 8}, {"OT hours", 8}, {"Base", 12}, {"OT pay", 12}, {"Total", 12}}

		header := make([]string, len(cols))
		for i, c := range cols {
			header[i] = display.Pad(c.title, c.width)
		}
		b.WriteString(HeaderStyle.Render(strings.Join(header, "  ")))
		b.WriteString("\n")

		for _, r := range listing.Paginate(p.rows, p.page, p.pageSize()) {
			cells := []string{
				display.ID(r.EmployeeID), r.Name,
				display.Number(r.Hours), display.Number(r.OvertimeHours),
				display.Money(r.Base), display.Money(r.OvertimePay), display.Money(r.Total),
			}
			for i, c := range cols {
				cells[i] = display.Pad(cells[i], c.width)
			}
			b.WriteString(NormalStyle.Render(strings.Join(cells, "  ")))
			b.WriteString("\n")
		}

		b.WriteString(fmt.Sprintf("\nPage %d of %d\n\n", p.page, p.totalPages()))
		b.WriteString(BoxStyle.Render(fmt.Sprintf(
			"Base:     %s\nOvertime: %s\nTotal:    %s",
			display.Amount(p.totals.Base),
			display.Amount(p.totals.OvertimePay),
			SuccessStyle.Render(display.Amount(p.totals.Total)),
		)))
		b.WriteString("\n")
	}

	if p.mode == payrollModeExporting {
		b.WriteString(DimStyle.Render("Exporting..."))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[e] Export CSV  [n] New period  [↑↓] Page  [r] Recalculate"))
	return b.String()
}
