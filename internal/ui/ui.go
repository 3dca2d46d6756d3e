// Package ui defines the prompt and status surface the setup engine talks
// to. Engine packages only depend on the UI interface; the terminal, the
// non-interactive fallback and the scripted test double implement it.
package ui

import "fmt"

// Level classifies a status line.
type Level int

const (
	LevelInfo Level = iota
	LevelTitle
	LevelSuccess
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTitle:
		return "title"
	case LevelSuccess:
		return "success"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Option is one labeled choice in a Select prompt.
type Option struct {
	Label string
	Value string
}

// InputOptions configures a free-text prompt.
type InputOptions struct {
	Placeholder string
	Default     string
	Validate    func(string) error
}

// UI is the four-operation collaborator the engine needs.
type UI interface {
	// Confirm asks a yes/no question. def is preselected and is what a
	// non-interactive implementation answers.
	Confirm(prompt string, def bool) (bool, error)
	// Select returns the Value of the chosen option.
	Select(prompt string, options []Option) (string, error)
	Input(prompt string, opts InputOptions) (string, error)
	Log(level Level, msg string)
}

// Spinner is implemented by UIs that can animate a status line while a
// blocking operation runs. The returned func clears the line.
type Spinner interface {
	Spin(msg string) (stop func())
}

// Spin starts a spinner when u supports one and otherwise logs msg as an
// info line. The returned func is always safe to call.
func Spin(u UI, msg string) func() {
	if s, ok := u.(Spinner); ok {
		return s.Spin(msg)
	}
	u.Log(LevelInfo, msg)
	return func() {}
}

// Logf formats and logs a status line.
func Logf(u UI, level Level, format string, args ...any) {
	u.Log(level, fmt.Sprintf(format, args...))
}
