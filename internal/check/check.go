// Package check implements the per-dependency protocol: detect, offer an
// autofix, run it, and report.
package check

import (
	"context"
	"fmt"
	"time"

	"dimos/internal/config"
	"dimos/internal/errs"
	"dimos/internal/logx"
	"dimos/internal/ui"
)

// Outcome is how a single check ended.
type Outcome string

const (
	Found    Outcome = "found"
	Fixed    Outcome = "fixed"
	Missing  Outcome = "missing"
	Declined Outcome = "declined"
	Failed   Outcome = "failed"
)

// Satisfied reports whether the dependency is present after the check.
func (o Outcome) Satisfied() bool {
	return o == Found || o == Fixed
}

// Autofix is an optional, confirmed remedy for a missing dependency.
type Autofix struct {
	Prompt string
	Run    func(ctx context.Context, cfg config.Config) error
	// RecheckOnFailure re-runs detection when Run fails and treats a
	// satisfied dependency as fixed. Set it for installers that exit
	// non-zero when the tool is already present.
	RecheckOnFailure bool
}

// Check describes one dependency for one installer.
type Check struct {
	Label string
	// Detect must be read-only: it runs unconditionally, including from
	// `dimos check`.
	Detect       func(ctx context.Context, cfg config.Config) bool
	Instructions func(cfg config.Config) string
	Autofix      *Autofix
}

// Static returns an Instructions func for fixed text.
func Static(text string) func(config.Config) string {
	return func(config.Config) string { return text }
}

// Validate enforces that every check can detect and that every failure
// path leaves the user with a next step.
func (c Check) Validate() error {
	switch {
	case c.Label == "":
		return errs.New(errs.InvalidInput, "check has no label")
	case c.Detect == nil:
		return errs.Newf(errs.InvalidInput, "check %q has no detection predicate", c.Label)
	case c.Autofix == nil && c.Instructions == nil:
		return errs.Newf(errs.InvalidInput, "check %q has neither an autofix nor manual instructions", c.Label)
	case c.Autofix != nil && c.Autofix.Run == nil:
		return errs.Newf(errs.InvalidInput, "check %q has an autofix without an action", c.Label)
	}
	return nil
}

// Run evaluates the check and returns only its error.
func (c Check) Run(ctx context.Context, cfg config.Config, u ui.UI) error {
	_, err := c.Evaluate(ctx, cfg, u)
	return err
}

// Detected runs the detection predicate without reporting anything.
func (c Check) Detected(ctx context.Context, cfg config.Config) bool {
	return c.Detect(ctx, cfg)
}

// Evaluate runs the protocol. A satisfied dependency never prompts and
// never runs the autofix. When the autofix fails its error is returned
// unchanged.
func (c Check) Evaluate(ctx context.Context, cfg config.Config, u ui.UI) (Outcome, error) {
	logger := logx.Component("check").With().Str("check", c.Label).Logger()
	if err := c.Validate(); err != nil {
		return Failed, err
	}

	start := time.Now()
	stop := ui.Spin(u, fmt.Sprintf("Checking %s…", c.Label))
	found := c.Detect(ctx, cfg)
	stop()
	logger.Debug().Bool("found", found).Dur("duration", time.Since(start)).Msg("detected")

	if found {
		ui.Logf(u, ui.LevelSuccess, "%s found", c.Label)
		return Found, nil
	}
	ui.Logf(u, ui.LevelWarn, "%s not found", c.Label)

	if c.Autofix == nil {
		c.instruct(u, cfg)
		return Missing, c.missing(false)
	}

	accept, err := u.Confirm(c.Autofix.Prompt, true)
	if err != nil {
		return Failed, err
	}
	logger.Info().Bool("accepted", accept).Msg("autofix offered")
	if !accept {
		c.instruct(u, cfg)
		return Declined, c.missing(true)
	}

	// No spinner here: installers write to the same terminal and may
	// prompt (sudo, Homebrew's "Press RETURN").
	start = time.Now()
	ui.Logf(u, ui.LevelInfo, "Running auto-fix for %s…", c.Label)
	fixErr := c.Autofix.Run(ctx, cfg)
	logger.Info().Err(fixErr).Dur("duration", time.Since(start)).Msg("autofix finished")

	if fixErr == nil {
		ui.Logf(u, ui.LevelSuccess, "%s ready", c.Label)
		return Fixed, nil
	}
	if c.Autofix.RecheckOnFailure && c.Detect(ctx, cfg) {
		logger.Debug().Err(fixErr).Msg("autofix exited non-zero but dependency is present")
		ui.Logf(u, ui.LevelSuccess, "%s ready", c.Label)
		return Fixed, nil
	}

	ui.Logf(u, ui.LevelError, "Auto-fix failed for %s", c.Label)
	c.instruct(u, cfg)
	return Failed, fixErr
}

func (c Check) instruct(u ui.UI, cfg config.Config) {
	if c.Instructions == nil {
		return
	}
	if text := c.Instructions(cfg); text != "" {
		u.Log(ui.LevelInfo, text)
	}
}

func (c Check) missing(declined bool) *errs.Error {
	msg := c.Label + " is required"
	if declined {
		msg += " (auto-fix declined)"
	}
	return errs.New(errs.DependencyMissing, msg).
		WithHint("install it then re-run `dimos init`").
		WithDetail("dependency", c.Label)
}
