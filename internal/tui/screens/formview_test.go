package screens

import (
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/sitecrew/internal/form"
)

func TestFormEditor_ReturnsInputCommands(t *testing.T) {
	t.Parallel()

	e := newFormEditor(form.New("Crew",
		form.Field{Key: "name", Label: "Name"},
		form.Field{Key: "status", Label: "Status", Kind: form.Choice, Value: "active", Options: form.Options("active", "inactive")},
	))
	e.input.Cursor.SetMode(cursor.CursorBlink)

	submit, cancel, cmd := e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("P")})
	require.False(t, submit)
	require.False(t, cancel)
	require.NotNil(t, cmd, "moving the cursor restarts the blink")
	require.Equal(t, "P", e.input.Value())

	require.NotNil(t, e.Tick(textinput.Blink()))

	_, _, cmd = e.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Nil(t, cmd)
	require.Equal(t, "P", e.form.Get("name"))

	_, _, cmd = e.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Nil(t, cmd)
	require.Equal(t, "inactive", e.form.Get("status"))
}

func TestFormEditor_StaticCursorHasNoInit(t *testing.T) {
	t.Parallel()

	e := newFormEditor(form.New("Crew", form.Field{Key: "name", Label: "Name"}))
	require.Nil(t, e.Init())
}
