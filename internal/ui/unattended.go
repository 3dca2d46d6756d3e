package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"dimos/internal/errs"
)

// Unattended answers every prompt without reading input: confirmations take
// their default, free text takes its default if it validates, selections
// fail because there is no safe default among peers.
type Unattended struct {
	lineWriter
}

// NewUnattended builds a non-interactive UI that writes status lines to out.
func NewUnattended(out io.Writer) *Unattended {
	return &Unattended{lineWriter: lineWriter{out: out}}
}

func (u *Unattended) Confirm(prompt string, def bool) (bool, error) {
	answer := "no"
	if def {
		answer = "yes"
	}
	u.Log(LevelInfo, fmt.Sprintf("%s → %s (non-interactive)", firstLine(prompt), answer))
	log.Debug().Str("prompt", prompt).Bool("answer", def).Msg("confirm defaulted")
	return def, nil
}

func (u *Unattended) Select(prompt string, options []Option) (string, error) {
	values := make([]string, 0, len(options))
	for _, opt := range options {
		values = append(values, opt.Value)
	}
	return "", errs.Newf(errs.SelectionRequired, "cannot answer %q without a terminal", prompt).
		WithHint("choose one of: %s", strings.Join(values, ", ")).
		WithDetail("options", values)
}

func (u *Unattended) Input(prompt string, opts InputOptions) (string, error) {
	if opts.Default == "" {
		return "", errs.Newf(errs.InvalidInput, "cannot answer %q without a terminal", prompt)
	}
	if opts.Validate != nil {
		if err := opts.Validate(opts.Default); err != nil {
			return "", errs.Wrapf(err, errs.InvalidInput, "default for %q is not valid", prompt)
		}
	}
	log.Debug().Str("prompt", prompt).Str("answer", opts.Default).Msg("input defaulted")
	return opts.Default, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
