package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dimos/internal/config"
	"dimos/internal/errs"
	"dimos/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the dimos configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigEditCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		RunE:  runConfigShow,
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file and backup locations",
		RunE:  runConfigPath,
	}
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the configuration in $EDITOR",
		RunE:  runConfigEdit,
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check stored answers against the survey questions",
		RunE:  runConfigValidate,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(configPath)
	if err != nil {
		return err
	}

	cfg, err := config.Read(pp.ConfigFile)
	if err != nil {
		return err
	}

	var data []byte
	if outputJSON {
		data, err = cfg.MarshalJSONDoc()
	} else {
		data, err = cfg.MarshalYAMLDoc()
	}
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(configPath)
	if err != nil {
		return err
	}
	exists, err := paths.FileExists(pp.ConfigFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		data, err := json.MarshalIndent(struct {
			Config string `json:"config"`
			Backup string `json:"backup"`
			Logs   string `json:"logs"`
			Exists bool   `json:"exists"`
		}{pp.ConfigFile, config.BackupPath(pp.ConfigFile), pp.LogsDir, exists}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	fmt.Fprintf(out, "config: %s", pp.ConfigFile)
	if !exists {
		fmt.Fprint(out, " (not created yet)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "backup: %s\n", config.BackupPath(pp.ConfigFile))
	fmt.Fprintf(out, "logs:   %s\n", pp.LogsDir)
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, err := paths.Resolve(configPath)
	if err != nil {
		return err
	}

	if err := ensureConfigFileExists(pp.ConfigFile); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}

	parts := splitEditorCommand(editor)
	if len(parts) == 0 {
		return fmt.Errorf("invalid EDITOR value: %q", editor)
	}

	parts = append(parts, pp.ConfigFile)

	execCmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	execCmd.Stdout = cmd.OutOrStdout()
	execCmd.Stderr = cmd.ErrOrStderr()
	execCmd.Stdin = cmd.InOrStdin()

	if err := execCmd.Run(); err != nil {
		return errs.Wrapf(err, errs.ExternalProcessFailed, "editor %s exited with error", parts[0])
	}

	if _, err := config.Read(pp.ConfigFile); err != nil {
		return err
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(configPath)
	if err != nil {
		return err
	}

	cfg, err := config.Read(pp.ConfigFile)
	if err != nil {
		return err
	}

	results := cfg.Validate()
	for _, v := range results {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", v.Level, v.Address, v.Message)
	}
	if config.HasErrors(results) {
		return errs.Newf(errs.InvalidInput, "config has %d invalid answers", countLevel(results, "error")).
			WithHint("run `dimos survey` to answer again")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "config ok")
	return nil
}

func countLevel(results []config.ValidationResult, level string) int {
	n := 0
	for _, v := range results {
		if v.Level == level {
			n++
		}
	}
	return n
}

func ensureConfigFileExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return errs.Wrapf(err, errs.ConfigIO, "stat config %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(err, errs.ConfigIO, "ensure config dir")
	}

	cfg := config.Default()
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errs.Wrap(err, errs.ConfigIO, "write default config")
	}
	return nil
}

func splitEditorCommand(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	// Basic splitting on whitespace; handles simple EDITOR values like "nano" or "code -w".
	return strings.Fields(value)
}
