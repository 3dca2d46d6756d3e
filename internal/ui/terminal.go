package ui

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"

	"dimos/internal/errs"
	"dimos/internal/tui"
)

// Terminal prompts through huh forms and renders status lines with lipgloss.
type Terminal struct {
	lineWriter
	in io.Reader
}

// NewTerminal builds an attended UI reading from in and drawing to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{lineWriter: lineWriter{out: out}, in: in}
}

// NewStdTerminal is NewTerminal over the process's stdin and stderr.
func NewStdTerminal() *Terminal {
	return NewTerminal(os.Stdin, os.Stderr)
}

func (t *Terminal) Confirm(prompt string, def bool) (bool, error) {
	answer := def
	field := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)
	if err := t.run(field); err != nil {
		return false, err
	}
	log.Debug().Str("prompt", prompt).Bool("answer", answer).Msg("confirm answered")
	return answer, nil
}

func (t *Terminal) Select(prompt string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", errs.Newf(errs.InvalidInput, "nothing to choose for %q", prompt)
	}
	choices := make([]huh.Option[string], 0, len(options))
	for _, opt := range options {
		choices = append(choices, huh.NewOption(opt.Label, opt.Value))
	}
	value := options[0].Value
	field := huh.NewSelect[string]().
		Title(prompt).
		Options(choices...).
		Value(&value)
	if err := t.run(field); err != nil {
		return "", err
	}
	log.Debug().Str("prompt", prompt).Str("answer", value).Msg("select answered")
	return value, nil
}

func (t *Terminal) Input(prompt string, opts InputOptions) (string, error) {
	value := opts.Default
	field := huh.NewInput().
		Title(prompt).
		Placeholder(opts.Placeholder).
		Value(&value)
	if opts.Validate != nil {
		field = field.Validate(opts.Validate)
	}
	if err := t.run(field); err != nil {
		return "", err
	}
	log.Debug().Str("prompt", prompt).Str("answer", value).Msg("input answered")
	return value, nil
}

// Spin draws an animated status line until the returned func is called.
func (t *Terminal) Spin(msg string) func() {
	sw := tui.NewStatusWriter(t.out, msg)
	return func() { sw.Stop() }
}

func (t *Terminal) run(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(t.in).
		WithOutput(t.out).
		WithShowHelp(false)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errs.New(errs.UserAborted, "prompt cancelled").
				WithHint("re-run the command to start again")
		}
		return errs.Wrap(err, errs.Unknown, "read answer")
	}
	return nil
}
