package screens

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/form"
)

// FormPage configures a screen that is a single form.
type FormPage struct {
	Title string
	Intro string
	Build func() *form.Form
	// Submit runs off the UI loop; the returned command runs on success.
	Submit func(ctx context.Context, f *form.Form) (tea.Cmd, error)
	// Cancel runs on esc. Without it esc starts over with an empty form.
	Cancel tea.Cmd
	// Shortcuts are extra keys handled before the form sees them.
	Shortcuts map[string]tea.Cmd
	Hint      string
}

type submittedMsg struct {
	screen *FormScreen
	gen    uint64
	then   tea.Cmd
	err    error
}

type FormScreen struct {
	page   FormPage
	editor *formEditor
	width  int
	height int

	busy   bool
	gen    uint64
	cancel context.CancelFunc
}

func NewFormScreen(page FormPage) *FormScreen {
	return &FormScreen{page: page}
}

func (s *FormScreen) Init() tea.Cmd {
	s.Close()
	s.busy = false
	s.editor = newFormEditor(s.page.Build())
	return s.editor.Init()
}

func (s *FormScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *FormScreen) Capturing() bool {
	return true
}

func (s *FormScreen) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Form exposes the form being edited, mostly for tests.
func (s *FormScreen) Form() *form.Form {
	return s.editor.form
}

func (s *FormScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case submittedMsg:
		if msg.screen != s || msg.gen != s.gen {
			return nil
		}
		s.busy = false
		s.cancel = nil
		if msg.err != nil {
			s.editor.Fail(api.Message(msg.err))
			return nil
		}
		s.editor = newFormEditor(s.page.Build())
		return tea.Batch(msg.then, s.editor.Init())

	case tea.KeyMsg:
		if s.busy {
			return nil
		}
		if cmd, ok := s.page.Shortcuts[msg.String()]; ok {
			return cmd
		}
		return s.handleKey(msg)
	}

	if s.editor == nil {
		return nil
	}
	return s.editor.Tick(msg)
}

func (s *FormScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	submit, cancel, cmd := s.editor.Update(msg)
	if cancel {
		if s.page.Cancel != nil {
			return s.page.Cancel
		}
		s.editor = newFormEditor(s.page.Build())
		return s.editor.Init()
	}
	if !submit {
		return cmd
	}

	if err := s.editor.form.Validate(); err != nil {
		s.editor.Fail(err.Error())
		return nil
	}
	s.editor.Fail("")

	s.gen++
	gen := s.gen
	ctx, cancelFn := context.WithCancel(context.Background())
	s.cancel = cancelFn
	s.busy = true

	submitFn := s.page.Submit
	f := s.editor.form.Clone()
	return func() tea.Msg {
		then, err := submitFn(ctx, f)
		return submittedMsg{screen: s, gen: gen, then: then, err: err}
	}
}

func (s *FormScreen) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(strings.ToUpper(s.page.Title)))
	b.WriteString("\n")
	if s.page.Intro != "" {
		b.WriteString(SubtitleStyle.Render(s.page.Intro))
		b.WriteString("\n")
	}

	b.WriteString(s.editor.View())
	if s.busy {
		b.WriteString("\n" + DimStyle.Render("Working..."))
	}
	if s.page.Hint != "" {
		b.WriteString("\n" + HelpStyle.Render(s.page.Hint))
	}
	return b.String()
}
