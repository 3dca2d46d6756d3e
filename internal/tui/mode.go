package tui

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/mattn/go-isatty"
)

// OutputMode is how `dimos check` renders its report.
type OutputMode int

const (
	// ModeTUI redraws a live CheckTable while detection runs.
	ModeTUI OutputMode = iota
	// ModePlain prints a static report once detection is done.
	ModePlain
	// ModeJSON prints the report as JSON.
	ModeJSON
)

func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModePlain:
		return "plain"
	case ModeJSON:
		return "json"
	}
	return "unknown"
}

// DetectMode picks the richest mode out can display. CI logs and dumb
// terminals get plain output even when attached to a pty.
func DetectMode(out io.Writer, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	f, ok := out.(*os.File)
	if !ok || !IsTerminal(f) || os.Getenv("CI") != "" {
		return ModePlain
	}
	if runtime.GOOS != "windows" {
		if term := os.Getenv("TERM"); term == "" || strings.EqualFold(term, "dumb") {
			return ModePlain
		}
	}
	return ModeTUI
}

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
