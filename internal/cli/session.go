package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dimos/internal/deps"
	"dimos/internal/host"
	"dimos/internal/logx"
	"dimos/internal/paths"
	"dimos/internal/sequence"
	"dimos/internal/ui"
)

// session is the per-process state shared by commands: resolved paths,
// logging, host capabilities and the UI matching them.
type session struct {
	paths  paths.UserPaths
	runner *host.ExecRunner
	caps   host.Capabilities
	ui     ui.UI
	closer io.Closer
}

func openSession(cmd *cobra.Command) (*session, error) {
	pp, err := paths.Resolve(configPath)
	if err != nil {
		return nil, err
	}

	// A log file that cannot be opened is already reported as a warning.
	closer, _ := logx.Setup(cmd.ErrOrStderr(), verbosity, pp.LogsDir)
	log.Debug().Str("command", cmd.CommandPath()).Str("config", pp.ConfigFile).Msg("dimos starting")

	runner := host.NewExecRunner()
	runner.Stdin = cmd.InOrStdin()
	runner.Stdout = cmd.OutOrStdout()
	runner.Stderr = cmd.ErrOrStderr()

	caps := host.Detect(runner, host.DetectOptions{
		NonInteractive: nonInteractive,
		Stdin:          asFile(cmd.InOrStdin()),
		Stdout:         asFile(cmd.ErrOrStderr()),
	})

	var u ui.UI
	if caps.Attended {
		u = ui.NewTerminal(cmd.InOrStdin(), cmd.ErrOrStderr())
	} else {
		u = ui.NewUnattended(cmd.ErrOrStderr())
	}

	return &session{paths: pp, runner: runner, caps: caps, ui: u, closer: closer}, nil
}

func (s *session) Close() error {
	return s.closer.Close()
}

// sequences builds the registry over the session's runner and returns the
// built-in sequences.
func (s *session) sequences() ([]sequence.Sequence, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = s.paths.Home
	}
	reg := deps.NewRegistry(deps.Env{Runner: s.runner, UI: s.ui, Home: home})
	return deps.Sequences(reg)
}

func asFile(v any) *os.File {
	f, _ := v.(*os.File)
	return f
}
