// Package selector picks the install sequence for this host and runs it.
package selector

import (
	"context"
	"fmt"
	"strings"

	"dimos/internal/config"
	"dimos/internal/errs"
	"dimos/internal/host"
	"dimos/internal/logx"
	"dimos/internal/sequence"
	"dimos/internal/ui"
)

// Skip is the choice that runs nothing.
const Skip = "skip"

// Candidates returns the sequences whose preconditions hold on caps, in
// their declared order.
func Candidates(caps host.Capabilities, seqs []sequence.Sequence) []sequence.Sequence {
	var out []sequence.Sequence
	for _, s := range seqs {
		if s.Available(caps) {
			out = append(out, s)
		}
	}
	return out
}

// Choose asks the user for one candidate or Skip.
func Choose(u ui.UI, candidates []sequence.Sequence) (string, error) {
	options := make([]ui.Option, 0, len(candidates)+1)
	for _, s := range candidates {
		label := s.Label
		if s.Description != "" {
			label += " (" + s.Description + ")"
		}
		options = append(options, ui.Option{Label: label, Value: s.Name})
	}
	options = append(options, ui.Option{Label: "Skip for now", Value: Skip})
	return u.Select("Which install sequence should dimos run?", options)
}

// Options are the inputs of a selector run.
type Options struct {
	Store     *config.Store
	Caps      host.Capabilities
	Sequences []sequence.Sequence
	UI        ui.UI
	// Preselected bypasses the prompt; it must name a candidate or Skip.
	Preselected string
	Handoff     sequence.Handoff
}

// Run marks setup as completed, saves, picks a sequence and runs it. The
// flag is persisted before dispatch so an aborted sequence does not make
// the next run start over.
func Run(ctx context.Context, opts Options) (sequence.Report, error) {
	logger := logx.Component("selector")
	candidates := Candidates(opts.Caps, opts.Sequences)
	names := candidateNames(candidates)
	logger.Debug().Strs("candidates", names).Str("preselected", opts.Preselected).Msg("selecting sequence")

	name, err := resolve(opts, candidates, names)
	if err != nil {
		return sequence.Report{}, err
	}

	opts.Store.Config().InitCompleted = true
	if err := opts.Store.Save(); err != nil {
		return sequence.Report{}, err
	}

	if name == Skip {
		opts.UI.Log(ui.LevelInfo, "Skipping dependency setup. Run `dimos init` again any time.")
		return sequence.Report{Sequence: Skip}, nil
	}

	var chosen sequence.Sequence
	for _, s := range candidates {
		if s.Name == name {
			chosen = s
		}
	}
	logger.Info().Str("sequence", chosen.Name).Msg("dispatching")
	return chosen.Run(ctx, *opts.Store.Config(), sequence.Options{
		UI:       opts.UI,
		Attended: opts.Caps.Attended,
		Handoff:  opts.Handoff,
	})
}

func resolve(opts Options, candidates []sequence.Sequence, names []string) (string, error) {
	choices := strings.Join(append(names, Skip), ", ")

	if opts.Preselected != "" {
		if opts.Preselected == Skip {
			return Skip, nil
		}
		for _, n := range names {
			if n == opts.Preselected {
				return n, nil
			}
		}
		known := false
		for _, s := range opts.Sequences {
			if s.Name == opts.Preselected {
				known = true
			}
		}
		if known {
			return "", errs.Newf(errs.InvalidInput, "sequence %q is not available on %s/%s", opts.Preselected, opts.Caps.OS, opts.Caps.Arch).
				WithHint("available here: %s", choices)
		}
		return "", errs.Newf(errs.InvalidInput, "unknown sequence %q", opts.Preselected).
			WithHint("available here: %s", choices)
	}

	if !opts.Caps.Attended {
		return "", errs.New(errs.SelectionRequired, "no install sequence selected and no terminal to ask").
			WithHint("pass --sequence with one of: %s", choices).
			WithDetail("candidates", names)
	}

	if len(candidates) == 0 {
		ui.Logf(opts.UI, ui.LevelWarn, "No install sequence fits this host (%s/%s).", opts.Caps.OS, opts.Caps.Arch)
	}
	name, err := Choose(opts.UI, candidates)
	if err != nil {
		return "", fmt.Errorf("choose sequence: %w", err)
	}
	return name, nil
}

func candidateNames(candidates []sequence.Sequence) []string {
	names := make([]string, len(candidates))
	for i, s := range candidates {
		names[i] = s.Name
	}
	return names
}
