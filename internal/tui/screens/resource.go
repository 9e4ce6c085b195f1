package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/display"
	"github.com/emilianohg/sitecrew/internal/form"
	"github.com/emilianohg/sitecrew/internal/listing"
)

type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// Lookup loads a side collection used by a screen's forms or columns. The
// returned apply runs on the UI loop once the whole load round succeeded.
type Lookup func(ctx context.Context) (apply func(), err error)

// LookupInto stores the fetched collection in dst.
func LookupInto[L any](dst *[]L, fetch func(context.Context) ([]L, error)) Lookup {
	return func(ctx context.Context) (func(), error) {
		items, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return func() { *dst = items }, nil
	}
}

// Action is something the user can do from a list: create, edit, delete or
// a domain action such as changing a status.
type Action[T any] struct {
	Key   string
	Label string
	// Global actions do not need a selected row.
	Global  bool
	Allowed func(item T) bool
	// Jump replaces everything below with a navigation.
	Jump func(item T) tea.Cmd
	Form func(item T) *form.Form
	// Check runs after the form validated. A non-empty answer is asked as
	// a y/n question before Run.
	Check   func(ctx context.Context, item T, f *form.Form) (string, error)
	Confirm func(item T) string
	Run     func(ctx context.Context, item T, f *form.Form) error
	Done    string
}

// Resource configures one list screen.
type Resource[T any] struct {
	Title   string
	Columns []Column[T]
	List    listing.Config[T]
	Load    func(ctx context.Context, params map[string]string) ([]T, error)
	Lookups []Lookup
	Actions []Action[T]
}

type resourceMode int

const (
	modeList resourceMode = iota
	modeSearch
	modeForm
	modeConfirm
)

type loadedMsg[T any] struct {
	screen  *ResourceScreen[T]
	gen     uint64
	items   []T
	applies []func()
	err     error
}

type checkedMsg[T any] struct {
	screen *ResourceScreen[T]
	prompt string
	err    error
}

type mutatedMsg[T any] struct {
	screen *ResourceScreen[T]
	err    error
}

type ResourceScreen[T any] struct {
	def    Resource[T]
	list   *listing.Controller[T]
	width  int
	height int

	cursor int
	facet  int
	mode   resourceMode
	search textinput.Model
	pager  paginator.Model

	editor *formEditor
	action *Action[T]
	target T
	prompt string

	// ready is set once lookups have arrived; forms wait for it.
	ready   bool
	pending *pendingOpen
}

type pendingOpen struct {
	key  string
	seed func(*form.Form)
}

func NewResourceScreen[T any](def Resource[T]) *ResourceScreen[T] {
	ti := textinput.New()
	ti.Placeholder = "Search"
	ti.CharLimit = 100
	ti.Width = 30
	ti.Cursor.SetMode(cursorMode)

	pg := paginator.New()
	pg.Type = paginator.Dots

	return &ResourceScreen[T]{
		def:    def,
		list:   listing.New(def.List),
		search: ti,
		pager:  pg,
	}
}

// OpenOnReady opens the form of action key as soon as the first load has
// finished, letting seed prefill it.
func (s *ResourceScreen[T]) OpenOnReady(key string, seed func(*form.Form)) {
	s.pending = &pendingOpen{key: key, seed: seed}
}

func (s *ResourceScreen[T]) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *ResourceScreen[T]) Capturing() bool {
	return s.mode == modeSearch || s.mode == modeForm
}

func (s *ResourceScreen[T]) Close() {
	s.list.Stop()
}

// Controller exposes the list state, mostly for tests.
func (s *ResourceScreen[T]) Controller() *listing.Controller[T] {
	return s.list
}

func (s *ResourceScreen[T]) Init() tea.Cmd {
	s.mode = modeList
	s.closeAction()
	return s.load()
}

func (s *ResourceScreen[T]) load() tea.Cmd {
	ctx, gen := s.list.BeginLoad(context.Background())
	params := s.list.RemoteParams()
	def := s.def

	return func() tea.Msg {
		var items []T
		applies := make([]func(), len(def.Lookups))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			items, err = def.Load(gctx, params)
			return err
		})
		for i, lookup := range def.Lookups {
			g.Go(func() error {
				apply, err := lookup(gctx)
				applies[i] = apply
				return err
			})
		}

		err := g.Wait()
		return loadedMsg[T]{screen: s, gen: gen, items: items, applies: applies, err: err}
	}
}

func (s *ResourceScreen[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg[T]:
		if msg.screen != s {
			return nil
		}
		return s.loaded(msg)

	case checkedMsg[T]:
		if msg.screen != s {
			return nil
		}
		return s.checked(msg)

	case mutatedMsg[T]:
		if msg.screen != s {
			return nil
		}
		return s.mutated(msg)

	case RefreshMsg:
		return s.load()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	switch {
	case s.mode == modeSearch:
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		return cmd
	case s.editor != nil:
		return s.editor.Tick(msg)
	}
	return nil
}

func (s *ResourceScreen[T]) loaded(msg loadedMsg[T]) tea.Cmd {
	if !s.list.FinishLoad(msg.gen, msg.items, msg.err) {
		return nil
	}

	if msg.err != nil {
		if api.IsAuthError(msg.err) {
			return NotifyErr(msg.err)
		}
		return nil
	}

	for _, apply := range msg.applies {
		if apply != nil {
			apply()
		}
	}
	s.ready = true
	s.clampCursor()

	if p := s.pending; p != nil {
		s.pending = nil
		cmd := s.start(p.key)
		if s.editor != nil && p.seed != nil {
			p.seed(s.editor.form)
			return tea.Batch(cmd, s.editor.focus())
		}
		return cmd
	}
	return nil
}

func (s *ResourceScreen[T]) checked(msg checkedMsg[T]) tea.Cmd {
	s.list.EndMutation()
	if s.editor == nil {
		return nil
	}

	if msg.err != nil {
		s.editor.Fail(api.Message(msg.err))
		return nil
	}
	if msg.prompt != "" {
		s.prompt = msg.prompt
		s.mode = modeConfirm
		return nil
	}
	return s.run()
}

func (s *ResourceScreen[T]) mutated(msg mutatedMsg[T]) tea.Cmd {
	s.list.EndMutation()

	if msg.err != nil {
		if s.editor != nil {
			s.mode = modeForm
			s.editor.Fail(api.Message(msg.err))
			if api.IsAuthError(msg.err) {
				return NotifyErr(msg.err)
			}
			return nil
		}
		s.mode = modeList
		s.closeAction()
		return NotifyErr(msg.err)
	}

	done := ""
	if s.action != nil {
		done = s.action.Done
	}
	s.mode = modeList
	s.closeAction()
	return tea.Batch(Notify(Success, done), s.load())
}

func (s *ResourceScreen[T]) closeAction() {
	var zero T
	s.editor = nil
	s.action = nil
	s.target = zero
	s.prompt = ""
}

func (s *ResourceScreen[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	// The open form or prompt belongs to the request in flight.
	if (s.mode == modeForm || s.mode == modeConfirm) && s.list.Processing() {
		return nil
	}

	switch s.mode {
	case modeSearch:
		return s.handleSearchKey(msg)
	case modeForm:
		return s.handleFormKey(msg)
	case modeConfirm:
		return s.handleConfirmKey(msg)
	default:
		return s.handleListKey(msg)
	}
}

func (s *ResourceScreen[T]) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
		return nil
	case "down", "j":
		if s.cursor < len(s.list.PageItems())-1 {
			s.cursor++
		}
		return nil
	case "left", "h":
		if s.list.PrevPage() {
			s.cursor = 0
		}
		return nil
	case "right", "l":
		if s.list.NextPage() {
			s.cursor = 0
		}
		return nil
	case "/":
		s.mode = modeSearch
		s.search.SetValue(s.list.Query())
		s.search.CursorEnd()
		return s.search.Focus()
	case "f":
		facets := s.list.Facets()
		if len(facets) == 0 {
			return nil
		}
		reload := s.list.CycleFacet(facets[s.facet].Key)
		s.cursor = 0
		if reload {
			return s.load()
		}
		return nil
	case "F":
		if n := len(s.list.Facets()); n > 0 {
			s.facet = (s.facet + 1) % n
		}
		return nil
	case "r":
		return s.load()
	case "esc":
		s.list.SetQuery("")
		s.cursor = 0
		return nil
	}

	return s.start(msg.String())
}

func (s *ResourceScreen[T]) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		s.mode = modeList
		s.search.Blur()
		return nil
	case "esc":
		s.mode = modeList
		s.search.Blur()
		s.search.SetValue("")
		s.list.SetQuery("")
		s.cursor = 0
		return nil
	}

	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	if s.search.Value() != s.list.Query() {
		s.list.SetQuery(s.search.Value())
		s.cursor = 0
	}
	return cmd
}

func (s *ResourceScreen[T]) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	submit, cancel, cmd := s.editor.Update(msg)
	if cancel {
		s.mode = modeList
		s.closeAction()
		return nil
	}
	if !submit {
		return cmd
	}

	if err := s.editor.form.Validate(); err != nil {
		s.editor.Fail(err.Error())
		return nil
	}
	s.editor.Fail("")

	if s.action.Check != nil {
		return s.check()
	}
	if s.action.Confirm != nil {
		s.prompt = s.action.Confirm(s.target)
		s.mode = modeConfirm
		return nil
	}
	return s.run()
}

func (s *ResourceScreen[T]) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		return s.run()
	case "n", "N", "esc":
		if s.editor != nil {
			s.mode = modeForm
			s.prompt = ""
			return nil
		}
		s.mode = modeList
		s.closeAction()
	}
	return nil
}

func (s *ResourceScreen[T]) selected() (T, bool) {
	items := s.list.PageItems()
	if s.cursor < 0 || s.cursor >= len(items) {
		var zero T
		return zero, false
	}
	return items[s.cursor], true
}

func (s *ResourceScreen[T]) findAction(key string) (Action[T], bool) {
	for _, a := range s.def.Actions {
		if a.Key == key {
			return a, true
		}
	}
	return Action[T]{}, false
}

// start begins the action bound to key, if any.
func (s *ResourceScreen[T]) start(key string) tea.Cmd {
	a, ok := s.findAction(key)
	if !ok {
		return nil
	}

	var item T
	if !a.Global {
		sel, ok := s.selected()
		if !ok {
			return nil
		}
		item = sel
	}

	if a.Allowed != nil && !a.Allowed(item) {
		return Notify(Warning, a.Label+" is not available for this entry")
	}
	if a.Jump != nil {
		return a.Jump(item)
	}
	if s.list.Processing() {
		return Notify(Info, "Still saving the previous change")
	}

	s.action = &a
	s.target = item

	if a.Form != nil {
		if !s.ready {
			return Notify(Info, "Still loading, try again in a moment")
		}
		s.editor = newFormEditor(a.Form(item))
		s.mode = modeForm
		return s.editor.Init()
	}

	if a.Confirm != nil {
		s.prompt = a.Confirm(item)
		s.mode = modeConfirm
		return nil
	}

	return s.run()
}

func (s *ResourceScreen[T]) check() tea.Cmd {
	if !s.list.BeginMutation() {
		return nil
	}

	check := s.action.Check
	item := s.target
	f := s.editor.form.Clone()

	return func() tea.Msg {
		prompt, err := check(context.Background(), item, f)
		return checkedMsg[T]{screen: s, prompt: prompt, err: err}
	}
}

func (s *ResourceScreen[T]) run() tea.Cmd {
	if s.action == nil || !s.list.BeginMutation() {
		return nil
	}

	run := s.action.Run
	item := s.target
	var f *form.Form
	if s.editor != nil {
		f = s.editor.form.Clone()
	}

	return func() tea.Msg {
		err := run(context.Background(), item, f)
		return mutatedMsg[T]{screen: s, err: err}
	}
}

func (s *ResourceScreen[T]) clampCursor() {
	if n := len(s.list.PageItems()); s.cursor >= n {
		s.cursor = max(0, n-1)
	}
}

func (s *ResourceScreen[T]) View() string {
	var b strings.Builder

	title := strings.ToUpper(s.def.Title)
	if n := len(s.list.Items()); n > 0 {
		title = fmt.Sprintf("%s (%d)", title, n)
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	switch s.mode {
	case modeForm:
		b.WriteString(s.editor.View())
		if s.list.Processing() {
			b.WriteString("\n" + DimStyle.Render("Saving..."))
		}
		return b.String()

	case modeConfirm:
		b.WriteString(WarningStyle.Render(s.prompt + " (y/n)"))
		b.WriteString("\n")
		if s.list.Processing() {
			b.WriteString(DimStyle.Render("Working..."))
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString(s.viewFilters())
	b.WriteString("\n\n")

	s.clampCursor()

	switch s.list.State() {
	case listing.Loading:
		b.WriteString("Loading...\n")
	case listing.Failed:
		b.WriteString(ErrorStyle.Render("Error: " + api.Message(s.list.Err())))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[r] Retry"))
		return b.String()
	case listing.Empty:
		b.WriteString(DimStyle.Render("Nothing to show."))
		b.WriteString("\n")
	default:
		b.WriteString(s.viewTable())
	}

	b.WriteString(s.viewHelp())
	return b.String()
}

func (s *ResourceScreen[T]) viewFilters() string {
	var parts []string

	if s.mode == modeSearch {
		parts = append(parts, "Search: "+s.search.View())
	} else if q := s.list.Query(); q != "" {
		parts = append(parts, "Search: "+q)
	}

	for i, f := range s.list.Facets() {
		v := s.list.FacetValue(f.Key)
		if v == "" {
			v = "all"
		}
		text := fmt.Sprintf("[%s: %s]", f.Label, v)
		if i == s.facet {
			text = SelectedStyle.Render(text)
		}
		parts = append(parts, text)
	}

	return strings.Join(parts, "  ")
}

func (s *ResourceScreen[T]) viewTable() string {
	var b strings.Builder

	header := make([]string, len(s.def.Columns))
	for i, c := range s.def.Columns {
		header[i] = display.Pad(c.Title, c.Width)
	}
	b.WriteString(HeaderStyle.Render("  " + strings.Join(header, "  ")))
	b.WriteString("\n")

	for i, item := range s.list.PageItems() {
		cells := make([]string, len(s.def.Columns))
		for j, c := range s.def.Columns {
			cells[j] = display.Pad(c.Value(item), c.Width)
		}

		cursor := "  "
		style := NormalStyle
		if i == s.cursor {
			cursor = "> "
			style = SelectedStyle
		}
		b.WriteString(style.Render(cursor + strings.Join(cells, "  ")))
		b.WriteString("\n")
	}

	s.pager.PerPage = s.list.PageSize()
	s.pager.SetTotalPages(len(s.list.Visible()))
	s.pager.Page = s.list.Page() - 1

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Page %d of %d  %s\n", s.list.Page(), s.list.TotalPages(), s.pager.View()))
	return b.String()
}

func (s *ResourceScreen[T]) viewHelp() string {
	help := []string{"[/] Search"}
	if len(s.list.Facets()) > 0 {
		help = append(help, "[f] Filter", "[F] Next filter")
	}
	if s.list.CanPrev() || s.list.CanNext() {
		help = append(help, "[←→] Page")
	}
	for _, a := range s.def.Actions {
		help = append(help, fmt.Sprintf("[%s] %s", a.Key, a.Label))
	}
	help = append(help, "[r] Refresh")
	return HelpStyle.Render(strings.Join(help, "  "))
}
