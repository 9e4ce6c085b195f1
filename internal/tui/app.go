package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/sitecrew/internal/access"
	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/models"
	"github.com/emilianohg/sitecrew/internal/tui/screens"
)

const (
	sidebarWidth = 26
	noticeTTL    = 5 * time.Second
	maxNotices   = 3
)

var icons = map[string]string{
	"dashboard":    "◆",
	"users":        "◉",
	"user-cog":     "⚙",
	"building":     "▣",
	"layers":       "≡",
	"calendar":     "▦",
	"check-square": "☑",
	"chart":        "▤",
	"wallet":       "$",
	"plus-circle":  "+",
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	contentStyle = lipgloss.NewStyle().Padding(0, 2)
)

// SessionChangedMsg is delivered whenever the signed-in identity changes.
// Identity is nil after sign-out.
type SessionChangedMsg struct {
	Identity *models.Identity
}

type notice struct {
	id    int
	level screens.Level
	text  string
}

type noticeExpiredMsg struct {
	id int
}

type App struct {
	deps   screens.Deps
	width  int
	height int

	path   string
	screen screens.Screen

	notices    []notice
	nextNotice int
}

func NewApp(deps screens.Deps) *App {
	return &App{deps: deps}
}

func (a *App) identity() *models.Identity {
	id, ok := a.deps.Session.Current()
	if !ok {
		return nil
	}
	return &id
}

func (a *App) Init() tea.Cmd {
	return a.navigate("/", nil)
}

// navigate runs the access guard for path and swaps in the screen it
// settles on. Redirects are silent.
func (a *App) navigate(path string, params map[string]string) tea.Cmd {
	decision := access.Guard(a.identity(), path)
	if decision.Outcome != access.Render {
		slog.Debug("route redirected", "path", path, "outcome", decision.Outcome.String(), "to", decision.Path)
	}

	factory, ok := factories[decision.Path]
	if !ok {
		return screens.Notify(screens.Failure, fmt.Sprintf("No screen for %s", decision.Path))
	}

	if a.screen != nil {
		a.screen.Close()
	}
	a.path = decision.Path
	a.screen = factory(a.deps, params)
	a.screen.SetSize(a.contentSize())
	return a.screen.Init()
}

func (a *App) contentSize() (int, int) {
	w := a.width
	if a.identity() != nil {
		w -= sidebarWidth + 2
	}
	return max(0, w-4), max(0, a.height-4)
}

func (a *App) home() string {
	if id := a.identity(); id != nil {
		return access.Home(string(id.Role))
	}
	return access.PathLogin
}

func (a *App) notify(level screens.Level, text string) tea.Cmd {
	if text == "" {
		return nil
	}
	a.nextNotice++
	n := notice{id: a.nextNotice, level: level, text: text}
	a.notices = append(a.notices, n)
	if len(a.notices) > maxNotices {
		a.notices = a.notices[len(a.notices)-maxNotices:]
	}
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{id: n.id} })
}

func (a *App) dismiss(id int) {
	for i, n := range a.notices {
		if n.id == id {
			a.notices = append(a.notices[:i], a.notices[i+1:]...)
			return
		}
	}
}

// signOut ends the backend session when asked to, then clears the local
// one. The session change arrives as a SessionChangedMsg.
func (a *App) signOut(remote bool) tea.Cmd {
	client, mgr := a.deps.Client, a.deps.Session
	return func() tea.Msg {
		ctx := context.Background()
		if remote {
			if err := client.Logout(ctx); err != nil {
				slog.WarnContext(ctx, "backend logout failed", "error", err)
			}
		}
		if err := mgr.SignOut(ctx); err != nil {
			return screens.NoticeMsg{Level: screens.Failure, Text: api.Message(err)}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.screen != nil {
			a.screen.SetSize(a.contentSize())
		}
		return a, nil

	case SessionChangedMsg:
		if msg.Identity == nil {
			return a, tea.Batch(a.navigate(access.PathLogin, nil), a.notify(screens.Info, "Signed out"))
		}
		return a, tea.Batch(
			a.navigate(access.Home(string(msg.Identity.Role)), nil),
			a.notify(screens.Success, "Signed in as "+msg.Identity.Name),
		)

	case screens.NavigateMsg:
		return a, a.navigate(msg.Path, msg.Params)

	case screens.NoticeMsg:
		cmd := a.notify(msg.Level, msg.Text)
		if api.IsAuthError(msg.Err) && a.identity() != nil {
			return a, tea.Batch(cmd, a.signOut(false))
		}
		return a, cmd

	case noticeExpiredMsg:
		a.dismiss(msg.id)
		return a, nil

	case tea.KeyMsg:
		if cmd, handled := a.handleKey(msg); handled {
			return a, cmd
		}
	}

	if a.screen == nil {
		return a, nil
	}
	return a, a.screen.Update(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "ctrl+l":
		if a.identity() == nil {
			return nil, true
		}
		return a.signOut(true), true
	}

	if a.screen != nil && a.screen.Capturing() {
		return nil, false
	}

	key := msg.String()
	switch key {
	case "q":
		if a.path == a.home() {
			return tea.Quit, true
		}
		return a.navigate(a.home(), nil), true
	case "x":
		if n := len(a.notices); n > 0 {
			a.notices = a.notices[:n-1]
		}
		return nil, true
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if id := a.identity(); id != nil {
			menu := access.Menu(string(id.Role))
			if i := int(key[0] - '1'); i < len(menu) {
				return a.navigate(menu[i].Path, nil), true
			}
		}
	}

	return nil, false
}

func (a *App) View() string {
	var content string
	if a.screen != nil {
		content = a.screen.View()
	}

	id := a.identity()
	body := contentStyle.Render(content)
	if id != nil {
		body = lipgloss.JoinHorizontal(lipgloss.Top, a.viewSidebar(*id), body)
	}

	var b strings.Builder
	b.WriteString(a.viewHeader(id))
	b.WriteString("\n")
	b.WriteString(body)
	if len(a.notices) > 0 {
		b.WriteString("\n\n")
		b.WriteString(a.viewNotices())
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(b.String())
}

func (a *App) viewHeader(id *models.Identity) string {
	left := headerStyle.Render("SITECREW")
	if id == nil {
		return left
	}
	right := screens.DimStyle.Render(fmt.Sprintf("%s <%s> · %s", id.Name, id.Email, id.Role))
	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-1)
	return left + strings.Repeat(" ", gap) + right
}

func (a *App) viewSidebar(id models.Identity) string {
	var b strings.Builder

	for i, e := range access.Menu(string(id.Role)) {
		line := fmt.Sprintf("%d %s %s", i+1, icons[e.Icon], e.Label)
		if e.Path == a.path {
			b.WriteString(screens.SelectedStyle.Render("> " + line))
		} else {
			b.WriteString(screens.NormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(screens.HelpStyle.Render("[1-9] Go  [q] Home/Quit\n[ctrl+l] Sign out\n[x] Dismiss notice"))
	return sidebarStyle.Render(b.String())
}

func (a *App) viewNotices() string {
	lines := make([]string, len(a.notices))
	for i, n := range a.notices {
		lines[i] = n.level.Style().Render("• " + n.text)
	}
	return contentStyle.Render(strings.Join(lines, "\n"))
}

// Run starts the terminal UI and blocks until the user quits.
func Run(deps screens.Deps) error {
	app := NewApp(deps)
	p := tea.NewProgram(app, tea.WithAltScreen())

	unsubscribe := deps.Session.Subscribe(func(identity *models.Identity) {
		p.Send(SessionChangedMsg{Identity: identity})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
