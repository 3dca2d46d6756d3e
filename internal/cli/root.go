package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"dimos/internal/errs"
)

var (
	configPath     string
	outputJSON     bool
	nonInteractive bool
	verbosity      int
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dimos",
		Short:         "Set up a workstation for dimos development",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.dimos/config.toml)")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; take defaults and fail where a choice is required")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log output (-v info, -vv debug, -vvv trace)")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newSurveyCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newSequencesCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)
)

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("error:")+" "+err.Error())
	if hint := errs.HintOf(err); hint != "" {
		fmt.Fprintln(w, hintStyle.Render("hint: "+hint))
	}
}
