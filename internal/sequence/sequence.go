// Package sequence runs an ordered, platform-specific list of preamble
// steps and dependency checks.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dimos/internal/check"
	"dimos/internal/config"
	"dimos/internal/errs"
	"dimos/internal/host"
	"dimos/internal/logx"
	"dimos/internal/ui"
)

// Step is a preamble action that always runs.
type Step struct {
	Label string
	Run   func(ctx context.Context, cfg config.Config) error
}

// Sequence is immutable once built; callers select one, never edit it.
type Sequence struct {
	Name        string
	Label       string
	Description string
	Preamble    []Step
	Checks      []check.Check
	// Requires reports whether the sequence applies to a host. Nil means
	// always.
	Requires func(host.Capabilities) bool
}

// Available reports whether the sequence's preconditions hold on caps.
func (s Sequence) Available(caps host.Capabilities) bool {
	return s.Requires == nil || s.Requires(caps)
}

// Handoff runs after a completed sequence so environment changes become
// visible, typically by starting a subshell.
type Handoff func(ctx context.Context) error

// ShellHandoff starts shell through r.
func ShellHandoff(r host.Runner, shell string) Handoff {
	return func(ctx context.Context) error {
		return host.SpawnShell(ctx, r, shell)
	}
}

// Options are the run-time collaborators of a sequence run.
type Options struct {
	UI       ui.UI
	Attended bool
	// Handoff is only used on attended runs. When nil or unattended the run
	// ends with a hint to open a new shell instead.
	Handoff Handoff
}

// Run executes the preamble then the checks in order. A failure stops the
// run unless an attended user chooses to continue; skipped items are
// recorded and the run still counts as complete. The returned error is
// non-nil only when the run was aborted.
func (s Sequence) Run(ctx context.Context, cfg config.Config, opts Options) (Report, error) {
	logger := logx.Component("sequence").With().Str("sequence", s.Name).Logger()
	u := opts.UI
	report := Report{Sequence: s.Name, Label: s.Label}
	started := time.Now()

	u.Log(ui.LevelTitle, "Dimos — "+s.Label)

	for _, step := range s.Preamble {
		stop := ui.Spin(u, step.Label)
		err := step.Run(ctx, cfg)
		stop()
		if err == nil {
			ui.Logf(u, ui.LevelSuccess, "%s done", step.Label)
			report.add(ItemResult{Kind: KindStep, Label: step.Label, Outcome: OutcomeDone})
			continue
		}

		ui.Logf(u, ui.LevelError, "%s: %v", step.Label, err)
		logger.Warn().Err(err).Str("step", step.Label).Msg("preamble step failed")
		item := ItemResult{Kind: KindStep, Label: step.Label, Outcome: string(check.Failed), Err: err.Error()}
		if abortErr := s.decide(u, opts.Attended, "Preamble step failed. Continue anyway?", err,
			fmt.Sprintf("aborted at preamble step '%s'", step.Label)); abortErr != nil {
			report.add(item)
			return report.abort(abortErr, logger, started)
		}
		item.Continued = true
		report.add(item)
	}

	for _, c := range s.Checks {
		outcome, err := c.Evaluate(ctx, cfg, u)
		item := ItemResult{Kind: KindCheck, Label: c.Label, Outcome: string(outcome)}
		if err == nil {
			report.add(item)
			continue
		}

		item.Err = err.Error()
		logger.Warn().Err(err).Str("check", c.Label).Str("outcome", string(outcome)).Msg("check failed")
		if errs.IsCode(err, errs.UserAborted) {
			report.add(item)
			return report.abort(err, logger, started)
		}
		prompt := fmt.Sprintf("'%s' failed (%v). Continue?", c.Label, err)
		if abortErr := s.decide(u, opts.Attended, prompt, err,
			fmt.Sprintf("aborted after '%s' failed", c.Label)); abortErr != nil {
			report.add(item)
			return report.abort(abortErr, logger, started)
		}
		item.Continued = true
		report.add(item)
	}

	if n := report.Skipped(); n > 0 {
		ui.Logf(u, ui.LevelWarn, "%s — finished with %d skipped", s.Label, n)
	} else {
		ui.Logf(u, ui.LevelSuccess, "%s — all packages ready", s.Label)
	}
	logger.Info().Int("skipped", report.Skipped()).Dur("duration", time.Since(started)).Msg("sequence complete")

	s.handoff(ctx, opts, logger)
	return report, nil
}

// decide applies the continuation policy to a failed item. It returns nil
// to continue and the error to abort with otherwise. Unattended runs abort
// with the original error; an attended refusal wraps it as USER_ABORTED.
func (s Sequence) decide(u ui.UI, attended bool, prompt string, cause error, abortMsg string) error {
	if !attended {
		return cause
	}
	cont, err := u.Confirm(prompt, false)
	if err != nil {
		return err
	}
	if !cont {
		return errs.Wrap(cause, errs.UserAborted, abortMsg).
			WithHint("fix the problem above, then re-run `dimos init`")
	}
	return nil
}

func (s Sequence) handoff(ctx context.Context, opts Options, logger zerolog.Logger) {
	if !opts.Attended || opts.Handoff == nil {
		opts.UI.Log(ui.LevelInfo, "Open a new shell to pick up environment changes.")
		return
	}
	opts.UI.Log(ui.LevelInfo, "Starting a new shell to activate environment changes (type `exit` to return).")
	if err := opts.Handoff(ctx); err != nil {
		logger.Debug().Err(err).Msg("subshell exited with an error")
	}
}
