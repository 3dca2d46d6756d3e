package deps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dimos/internal/check"
	"dimos/internal/config"
	"dimos/internal/errs"
	"dimos/internal/ui"
)

const flakesLine = "experimental-features = nix-command flakes"

// UserNixConf is the per-user nix.conf under home.
func UserNixConf(home string) string {
	return filepath.Join(home, ".config", "nix", "nix.conf")
}

// FlakesEnabled reports whether a nix.conf body enables flakes.
func FlakesEnabled(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "experimental-features") && strings.Contains(trimmed, "flakes") {
			return true
		}
	}
	return false
}

// EnableFlakes returns content with flakes enabled: appended to an existing
// experimental-features line, or as a new line at the end.
func EnableFlakes(content string) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	found := false
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "experimental-features") {
			continue
		}
		found = true
		if !strings.Contains(line, "flakes") {
			lines[i] = strings.TrimRight(line, " \t") + " flakes"
		}
	}
	if found {
		return strings.Join(lines, "\n") + "\n"
	}
	if content == "" || strings.HasSuffix(content, "\n") {
		return content + flakesLine + "\n"
	}
	return content + "\n" + flakesLine + "\n"
}

func nixFlakesCheck(e Env) check.Check {
	userConf := UserNixConf(e.Home)
	return check.Check{
		Label: "nix flakes",
		Detect: func(context.Context, config.Config) bool {
			for _, path := range []string{userConf, e.SystemNixConf} {
				data, err := os.ReadFile(path)
				if err == nil && FlakesEnabled(string(data)) {
					return true
				}
			}
			return false
		},
		Instructions: check.Static("Add `" + flakesLine + "` to ~/.config/nix/nix.conf"),
		Autofix: &check.Autofix{
			Prompt: "Enable nix flakes in ~/.config/nix/nix.conf?",
			Run: func(context.Context, config.Config) error {
				if err := writeFlakes(userConf); err != nil {
					return errs.Wrapf(err, errs.AutofixFailed, "enable flakes in %s", userConf)
				}
				e.UI.Log(ui.LevelWarn, "You may need to restart the nix daemon: `sudo systemctl restart nix-daemon`")
				return nil
			},
		},
	}
}

func writeFlakes(path string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read nix.conf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure nix config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(EnableFlakes(string(existing))), 0o644); err != nil {
		return fmt.Errorf("write nix.conf: %w", err)
	}
	return nil
}
