package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/sitecrew/internal/form"
)

// cursorMode is the text cursor style of every form input.
var cursorMode = cursor.CursorBlink

// formEditor edits a form.Form one field at a time. Typed fields go through
// a single text input; choice and id fields are cycled with left/right.
type formEditor struct {
	form   *form.Form
	cursor int
	input  textinput.Model
	err    string
}

func newFormEditor(f *form.Form) *formEditor {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	ti.Cursor.SetMode(cursorMode)

	e := &formEditor{form: f, input: ti}
	e.focus()
	return e
}

func (e *formEditor) field() *form.Field {
	if e.cursor < 0 || e.cursor >= len(e.form.Fields) {
		return nil
	}
	return &e.form.Fields[e.cursor]
}

// Init starts the cursor blinking.
func (e *formEditor) Init() tea.Cmd {
	if cursorMode != cursor.CursorBlink {
		return nil
	}
	return textinput.Blink
}

func (e *formEditor) focus() tea.Cmd {
	f := e.field()
	if f == nil || !f.Typed() {
		e.input.Blur()
		return nil
	}

	e.input.EchoMode = textinput.EchoNormal
	if f.Kind == form.Secret {
		e.input.EchoMode = textinput.EchoPassword
	}
	e.input.Placeholder = placeholderFor(f.Kind)
	e.input.SetValue(f.Value)
	e.input.CursorEnd()
	return e.input.Focus()
}

func (e *formEditor) commit() {
	if f := e.field(); f != nil && f.Typed() {
		f.Value = e.input.Value()
	}
}

func (e *formEditor) move(delta int) tea.Cmd {
	e.commit()
	n := len(e.form.Fields)
	if n == 0 {
		return nil
	}
	e.cursor = ((e.cursor+delta)%n + n) % n
	return e.focus()
}

// Update handles one key. It reports whether the form was submitted or
// cancelled; the field values are committed in both cases. cmd belongs to
// the text input and should be returned to the program.
func (e *formEditor) Update(msg tea.KeyMsg) (submit, cancel bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		e.commit()
		return false, true, nil
	case "ctrl+s":
		e.commit()
		return true, false, nil
	case "enter":
		if e.cursor == len(e.form.Fields)-1 {
			e.commit()
			return true, false, nil
		}
		return false, false, e.move(1)
	case "tab", "down":
		return false, false, e.move(1)
	case "shift+tab", "up":
		return false, false, e.move(-1)
	}

	f := e.field()
	if f == nil {
		return false, false, nil
	}

	if !f.Typed() {
		switch msg.String() {
		case "left", "h":
			e.form.Cycle(f.Key, -1)
		case "right", "l", " ":
			e.form.Cycle(f.Key, 1)
		}
		return false, false, nil
	}

	e.input, cmd = e.input.Update(msg)
	return false, false, cmd
}

// Tick passes cursor blink messages to the text input.
func (e *formEditor) Tick(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

// Fail shows a message under the form and keeps it open.
func (e *formEditor) Fail(text string) {
	e.err = text
}

func (e *formEditor) View() string {
	var b strings.Builder

	b.WriteString(SubtitleStyle.Render(e.form.Title))
	b.WriteString("\n")

	width := 0
	for _, f := range e.form.Fields {
		width = max(width, len([]rune(f.Label)))
	}

	for i, f := range e.form.Fields {
		cursor := "  "
		style := NormalStyle
		if i == e.cursor {
			cursor = "> "
			style = SelectedStyle
		}

		label := f.Label
		if f.Required {
			label += "*"
		}
		label = fmt.Sprintf("%-*s", width+1, label)

		value := f.Display()
		switch {
		case i == e.cursor && f.Typed():
			value = e.input.View()
		case !f.Typed():
			value = "‹ " + value + " ›"
		}

		b.WriteString(style.Render(cursor + label + "  "))
		b.WriteString(value)
		b.WriteString("\n")
	}

	if e.err != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(e.err))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[tab/↑↓] Field  [←→] Choose  [enter] Next/Save  [ctrl+s] Save  [esc] Cancel"))
	return b.String()
}

func placeholderFor(k form.Kind) string {
	switch k {
	case form.Date:
		return "YYYY-MM-DD"
	case form.Number:
		return "0.00"
	default:
		return ""
	}
}
