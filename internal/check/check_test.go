package check

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dimos/internal/config"
	"dimos/internal/errs"
	"dimos/internal/ui"
	"dimos/internal/ui/uitest"
)

// probe counts detection and autofix calls.
type probe struct {
	present bool
	detects int
	fixes   int
	fixErr  error
	fixSets bool
}

func (p *probe) detect(context.Context, config.Config) bool {
	p.detects++
	return p.present
}

func (p *probe) fix(context.Context, config.Config) error {
	p.fixes++
	if p.fixSets {
		p.present = true
	}
	return p.fixErr
}

func (p *probe) check(withFix bool) Check {
	c := Check{
		Label:        "git-lfs",
		Detect:       p.detect,
		Instructions: Static("Run: nix profile install nixpkgs#git-lfs"),
	}
	if withFix {
		c.Autofix = &Autofix{Prompt: "Install git-lfs via nix?", Run: p.fix}
	}
	return c
}

func TestFoundShortCircuits(t *testing.T) {
	p := &probe{present: true}
	r := uitest.New()

	outcome, err := p.check(true).Evaluate(context.Background(), config.Default(), r)
	require.NoError(t, err)
	assert.Equal(t, Found, outcome)
	assert.Zero(t, p.fixes)
	assert.Empty(t, r.Prompts)
	assert.Equal(t, []string{"git-lfs found"}, r.Texts(ui.LevelSuccess))
	assert.Equal(t, []string{"Checking git-lfs…"}, r.Spins)
}

func TestMissingWithoutAutofix(t *testing.T) {
	p := &probe{}
	r := uitest.New()

	outcome, err := p.check(false).Evaluate(context.Background(), config.Default(), r)
	require.Error(t, err)
	assert.Equal(t, Missing, outcome)
	assert.True(t, errs.IsCode(err, errs.DependencyMissing))
	assert.Equal(t, "git-lfs is required", err.Error())
	assert.Equal(t, 1, r.Count("Run: nix profile install nixpkgs#git-lfs"))
	assert.Equal(t, []string{"git-lfs not found"}, r.Texts(ui.LevelWarn))
	assert.Empty(t, r.Prompts)
}

func TestDeclinedAutofix(t *testing.T) {
	p := &probe{}
	r := uitest.New().Confirms(false)

	outcome, err := p.check(true).Evaluate(context.Background(), config.Default(), r)
	assert.Equal(t, Declined, outcome)
	assert.True(t, errs.IsCode(err, errs.DependencyMissing))
	assert.Zero(t, p.fixes)
	assert.Equal(t, 1, r.Count("Run: nix profile install nixpkgs#git-lfs"))

	require.Len(t, r.Prompts, 1)
	assert.Equal(t, "Install git-lfs via nix?", r.Prompts[0].Text)
	assert.True(t, r.Prompts[0].Default, "autofix prompt defaults to yes")
}

func TestAutofixSucceeds(t *testing.T) {
	p := &probe{}
	r := uitest.New().Confirms(true)

	outcome, err := p.check(true).Evaluate(context.Background(), config.Default(), r)
	require.NoError(t, err)
	assert.Equal(t, Fixed, outcome)
	assert.Equal(t, 1, p.fixes)
	assert.Equal(t, 1, p.detects, "exit status is trusted without re-detecting")
	assert.Equal(t, []string{"git-lfs ready"}, r.Texts(ui.LevelSuccess))
	assert.Equal(t, []string{"Checking git-lfs…"}, r.Spins, "installers run without a spinner")
	assert.Contains(t, r.Texts(ui.LevelInfo), "Running auto-fix for git-lfs…")
	assert.Zero(t, r.Count("Run: nix profile install nixpkgs#git-lfs"))
}

func TestAutofixFailureReturnsOriginalError(t *testing.T) {
	boom := errors.New("nix: command not found")
	p := &probe{fixErr: boom}
	r := uitest.New().Confirms(true)

	outcome, err := p.check(true).Evaluate(context.Background(), config.Default(), r)
	assert.Equal(t, Failed, outcome)
	assert.Same(t, boom, err)
	assert.Equal(t, []string{"Auto-fix failed for git-lfs"}, r.Texts(ui.LevelError))
	assert.Equal(t, 1, r.Count("Run: nix profile install nixpkgs#git-lfs"))

	// Instructions come after the failure line.
	var idxFail, idxInstr int
	for i, l := range r.Lines {
		switch l.Text {
		case "Auto-fix failed for git-lfs":
			idxFail = i
		case "Run: nix profile install nixpkgs#git-lfs":
			idxInstr = i
		}
	}
	assert.Less(t, idxFail, idxInstr)
}

func TestRecheckOnFailure(t *testing.T) {
	boom := errors.New("exit status 1")

	t.Run("present after failure counts as fixed", func(t *testing.T) {
		p := &probe{fixErr: boom, fixSets: true}
		c := p.check(true)
		c.Autofix.RecheckOnFailure = true

		outcome, err := c.Evaluate(context.Background(), config.Default(), uitest.New().Confirms(true))
		require.NoError(t, err)
		assert.Equal(t, Fixed, outcome)
		assert.Equal(t, 2, p.detects)
	})

	t.Run("still missing propagates the error", func(t *testing.T) {
		p := &probe{fixErr: boom}
		c := p.check(true)
		c.Autofix.RecheckOnFailure = true

		outcome, err := c.Evaluate(context.Background(), config.Default(), uitest.New().Confirms(true))
		assert.Equal(t, Failed, outcome)
		assert.Same(t, boom, err)
	})

	t.Run("without the flag no re-detection happens", func(t *testing.T) {
		p := &probe{fixErr: boom, fixSets: true}
		outcome, err := p.check(true).Evaluate(context.Background(), config.Default(), uitest.New().Confirms(true))
		assert.Equal(t, Failed, outcome)
		assert.Same(t, boom, err)
		assert.Equal(t, 1, p.detects)
	})
}

func TestPromptErrorPropagates(t *testing.T) {
	p := &probe{}
	_, err := p.check(true).Evaluate(context.Background(), config.Default(), uitest.New())
	assert.ErrorIs(t, err, uitest.ErrUnscripted)
	assert.Zero(t, p.fixes)
}

func TestRunReturnsOnlyError(t *testing.T) {
	p := &probe{present: true}
	assert.NoError(t, p.check(false).Run(context.Background(), config.Default(), uitest.New()))
}

func TestInstructionsSeeConfig(t *testing.T) {
	c := Check{
		Label:  "editor plugin",
		Detect: func(context.Context, config.Config) bool { return false },
		Instructions: func(cfg config.Config) string {
			return "install the plugin for " + cfg.Answers["personality.editor"]
		},
	}
	cfg := config.Config{Answers: map[string]string{"personality.editor": "zed"}}
	r := uitest.New()
	_ = c.Run(context.Background(), cfg, r)
	assert.Equal(t, 1, r.Count("install the plugin for zed"))
}

func TestValidate(t *testing.T) {
	detect := func(context.Context, config.Config) bool { return true }
	tests := []struct {
		name  string
		check Check
		ok    bool
	}{
		{"no label", Check{Detect: detect, Instructions: Static("x")}, false},
		{"no detect", Check{Label: "a", Instructions: Static("x")}, false},
		{"no remedy", Check{Label: "a", Detect: detect}, false},
		{"autofix without run", Check{Label: "a", Detect: detect, Autofix: &Autofix{Prompt: "?"}}, false},
		{"instructions only", Check{Label: "a", Detect: detect, Instructions: Static("x")}, true},
		{"autofix only", Check{Label: "a", Detect: detect, Autofix: &Autofix{Prompt: "?", Run: func(context.Context, config.Config) error { return nil }}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errs.IsCode(err, errs.InvalidInput))
			}
		})
	}
}

func TestOutcomeSatisfied(t *testing.T) {
	assert.True(t, Found.Satisfied())
	assert.True(t, Fixed.Satisfied())
	assert.False(t, Missing.Satisfied())
	assert.False(t, Declined.Satisfied())
	assert.False(t, Failed.Satisfied())
}
