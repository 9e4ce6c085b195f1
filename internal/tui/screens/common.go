package screens

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/config"
	"github.com/emilianohg/sitecrew/internal/session"
)

// Screen is one routed view inside the app frame.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	// Capturing reports whether keys are going into a text field. The app
	// leaves digit and letter shortcuts alone while it is true.
	Capturing() bool
	// Close stops whatever the screen still has in flight.
	Close()
}

// Deps is what screens need from the outside world.
type Deps struct {
	Client  *api.Client
	Session *session.Manager
	Config  *config.Config
}

// NavigateMsg is sent when navigation to another route is requested
type NavigateMsg struct {
	Path   string
	Params map[string]string
}

func Navigate(path string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: path}
	}
}

func NavigateWith(path string, params map[string]string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: path, Params: params}
	}
}

// RefreshMsg is sent when data should be refreshed
type RefreshMsg struct{}

func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

type Level int

const (
	Info Level = iota
	Success
	Warning
	Failure
)

func (l Level) Style() lipgloss.Style {
	switch l {
	case Success:
		return SuccessStyle
	case Warning:
		return WarningStyle
	case Failure:
		return ErrorStyle
	default:
		return NormalStyle
	}
}

// NoticeMsg asks the app to show a dismissible notice. Err is set when the
// notice reports a failed backend call.
type NoticeMsg struct {
	Level Level
	Text  string
	Err   error
}

func Notify(level Level, text string) tea.Cmd {
	if text == "" {
		return nil
	}
	return func() tea.Msg {
		return NoticeMsg{Level: level, Text: text}
	}
}

// NotifyErr reports err as a failure notice. Cancelled calls stay silent.
func NotifyErr(err error) tea.Cmd {
	text := api.Message(err)
	if text == "" {
		return nil
	}
	return func() tea.Msg {
		return NoticeMsg{Level: Failure, Text: text, Err: err}
	}
}

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("111"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("130")).
			Padding(1, 2)
)
