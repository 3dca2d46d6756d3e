// Package questions holds the closed set of answer keys stored in the user
// configuration and the survey that collects them.
package questions

import (
	"errors"
	"strings"
)

// Key identifies one stored answer. Each key maps to exactly one dotted
// address in the answers table; addresses never collide.
type Key int

const (
	Editor Key = iota
	Indentation
	Language
	Schedule
	DebugStyle
)

var addresses = [...]string{
	Editor:      "personality.editor",
	Indentation: "personality.indentation",
	Language:    "personality.language",
	Schedule:    "personality.schedule",
	DebugStyle:  "personality.debug_style",
}

// Address returns the storage address for k.
func (k Key) Address() string {
	if k < 0 || int(k) >= len(addresses) {
		return ""
	}
	return addresses[k]
}

func (k Key) String() string {
	return k.Address()
}

// Keys returns every known key in declaration order.
func Keys() []Key {
	keys := make([]Key, len(addresses))
	for i := range addresses {
		keys[i] = Key(i)
	}
	return keys
}

// Lookup resolves a storage address back to its key.
func Lookup(address string) (Key, bool) {
	for i, a := range addresses {
		if a == address {
			return Key(i), true
		}
	}
	return 0, false
}

// Kind distinguishes single-choice questions from free text.
type Kind int

const (
	Choice Kind = iota
	Text
)

// Option is one selectable answer.
type Option struct {
	Value string
	Label string
	Hint  string
}

// Question describes a single survey prompt.
type Question struct {
	Key         Key
	Kind        Kind
	Prompt      string
	Placeholder string
	Options     []Option
	Validate    func(string) error
}

// Bank returns the survey in the order it is asked.
func Bank() []Question {
	return []Question{
		{
			Key:    Editor,
			Kind:   Choice,
			Prompt: "What's your editor of choice?",
			Options: []Option{
				{Value: "neovim", Label: "Neovim"},
				{Value: "emacs", Label: "Emacs"},
				{Value: "vscode", Label: "VS Code"},
				{Value: "zed", Label: "Zed"},
				{Value: "other", Label: "Other / CLI"},
			},
		},
		{
			Key:    Indentation,
			Kind:   Choice,
			Prompt: "Tabs or spaces?",
			Options: []Option{
				{Value: "spaces", Label: "Spaces"},
				{Value: "tabs", Label: "Tabs", Hint: "heresy"},
			},
		},
		{
			Key:         Language,
			Kind:        Text,
			Prompt:      "Primary programming language?",
			Placeholder: "e.g. Python, Rust, TypeScript",
			Validate:    validateLanguage,
		},
		{
			Key:    Schedule,
			Kind:   Choice,
			Prompt: "When do you do your best work?",
			Options: []Option{
				{Value: "morning", Label: "Early bird", Hint: "up before the coffee"},
				{Value: "night", Label: "Night owl", Hint: "when everyone else is asleep"},
				{Value: "whenever", Label: "Whenever the flow hits", Hint: "chaos schedule"},
			},
		},
		{
			Key:    DebugStyle,
			Kind:   Choice,
			Prompt: "How do you debug?",
			Options: []Option{
				{Value: "prints", Label: "Print statements", Hint: "the classic"},
				{Value: "debugger", Label: "Proper debugger", Hint: "breakpoints and watches"},
				{Value: "rubber_duck", Label: "Rubber duck", Hint: "talking it through"},
				{Value: "rewrite", Label: "Rewrite until it works", Hint: "burn it down"},
			},
		},
	}
}

func validateLanguage(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("language cannot be empty")
	}
	if strings.ContainsAny(s, "\r\n") {
		return errors.New("language must be a single line")
	}
	return nil
}
