package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"dimos/internal/config"
	"dimos/internal/selector"
	"dimos/internal/sequence"
)

var (
	initSequence string
	initNoShell  bool
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Detect and install the system dependencies dimos needs",
		Long: `Choose the install sequence for this host and run it: every dependency is
detected first, and missing ones are installed after confirmation.

Without a terminal (or with --non-interactive) pass --sequence; confirmations
take their defaults and the first failure aborts the run.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().StringVar(&initSequence, "sequence", "", "run this sequence without asking (see `dimos sequences`), or \"skip\"")
	cmd.Flags().BoolVar(&initNoShell, "no-shell", false, "do not start a new shell when the sequence completes")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	store, err := config.LoadOrRecover(s.paths.ConfigFile, s.ui, s.caps.Attended)
	if err != nil {
		return err
	}

	seqs, err := s.sequences()
	if err != nil {
		return err
	}

	var handoff sequence.Handoff
	if !initNoShell && !outputJSON {
		handoff = sequence.ShellHandoff(s.runner, s.caps.Shell)
	}

	report, runErr := selector.Run(cmd.Context(), selector.Options{
		Store:       store,
		Caps:        s.caps,
		Sequences:   seqs,
		UI:          s.ui,
		Preselected: initSequence,
		Handoff:     handoff,
	})

	if outputJSON && report.Sequence != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}
	return runErr
}
