// Package uitest provides a scripted ui.UI for tests.
package uitest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"dimos/internal/ui"
)

// ErrUnscripted is returned when a prompt arrives with no queued answer.
var ErrUnscripted = errors.New("uitest: unscripted prompt")

// Prompt records one question the code under test asked.
type Prompt struct {
	Kind    string // "confirm", "select" or "input"
	Text    string
	Default bool
	Options []ui.Option
}

// Line records one status line.
type Line struct {
	Level ui.Level
	Text  string
}

// Recorder answers prompts from queues and records everything shown.
type Recorder struct {
	mu       sync.Mutex
	confirms []bool
	selects  []string
	inputs   []string

	// UseDefaults makes unscripted confirms answer with their default.
	UseDefaults bool

	Prompts []Prompt
	Lines   []Line
	Spins   []string
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{}
}

// Confirms queues answers for Confirm calls.
func (r *Recorder) Confirms(answers ...bool) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirms = append(r.confirms, answers...)
	return r
}

// Selects queues option values for Select calls.
func (r *Recorder) Selects(values ...string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selects = append(r.selects, values...)
	return r
}

// Inputs queues answers for Input calls.
func (r *Recorder) Inputs(values ...string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, values...)
	return r
}

func (r *Recorder) Confirm(prompt string, def bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, Prompt{Kind: "confirm", Text: prompt, Default: def})
	if len(r.confirms) == 0 {
		if r.UseDefaults {
			return def, nil
		}
		return false, fmt.Errorf("%w: confirm %q", ErrUnscripted, prompt)
	}
	answer := r.confirms[0]
	r.confirms = r.confirms[1:]
	return answer, nil
}

func (r *Recorder) Select(prompt string, options []ui.Option) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, Prompt{Kind: "select", Text: prompt, Options: options})
	if len(r.selects) == 0 {
		return "", fmt.Errorf("%w: select %q", ErrUnscripted, prompt)
	}
	value := r.selects[0]
	r.selects = r.selects[1:]
	for _, opt := range options {
		if opt.Value == value {
			return value, nil
		}
	}
	return "", fmt.Errorf("uitest: %q is not an option of %q", value, prompt)
}

func (r *Recorder) Input(prompt string, opts ui.InputOptions) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, Prompt{Kind: "input", Text: prompt})
	if len(r.inputs) == 0 {
		return "", fmt.Errorf("%w: input %q", ErrUnscripted, prompt)
	}
	value := r.inputs[0]
	r.inputs = r.inputs[1:]
	if opts.Validate != nil {
		if err := opts.Validate(value); err != nil {
			return "", err
		}
	}
	return value, nil
}

func (r *Recorder) Log(level ui.Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, Line{Level: level, Text: msg})
}

// Spin records the spinner message; stopping it is a no-op.
func (r *Recorder) Spin(msg string) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Spins = append(r.Spins, msg)
	return func() {}
}

// Texts returns the text of every line logged at level.
func (r *Recorder) Texts(level ui.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, l := range r.Lines {
		if l.Level == level {
			out = append(out, l.Text)
		}
	}
	return out
}

// Count returns how many logged lines equal text exactly.
func (r *Recorder) Count(text string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.Lines {
		if l.Text == text {
			n++
		}
	}
	return n
}

// Contains reports whether any logged line contains substr.
func (r *Recorder) Contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.Lines {
		if strings.Contains(l.Text, substr) {
			return true
		}
	}
	return false
}

// PromptsOf returns the text of every prompt of the given kind.
func (r *Recorder) PromptsOf(kind string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, p := range r.Prompts {
		if p.Kind == kind {
			out = append(out, p.Text)
		}
	}
	return out
}
