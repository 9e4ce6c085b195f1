package screens

import (
	"os"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
)

func TestMain(m *testing.M) {
	// A blinking cursor schedules timers after every key.
	cursorMode = cursor.CursorStatic
	os.Exit(m.Run())
}
