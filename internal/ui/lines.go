package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	infoStyle    = lipgloss.NewStyle().Faint(true)
)

// lineWriter renders status lines with a level glyph.
type lineWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *lineWriter) Log(level Level, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, FormatLine(level, msg))
}

// FormatLine returns the styled representation of a status line.
func FormatLine(level Level, msg string) string {
	switch level {
	case LevelTitle:
		return "\n" + titleStyle.Render(msg)
	case LevelSuccess:
		return successStyle.Render("✓") + " " + msg
	case LevelWarn:
		return warnStyle.Render("!") + " " + msg
	case LevelError:
		return errorStyle.Render("✗") + " " + msg
	default:
		return infoStyle.Render("•") + " " + msg
	}
}
