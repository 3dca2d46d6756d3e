package deps

import (
	"context"

	"dimos/internal/check"
	"dimos/internal/config"
	"dimos/internal/errs"
	"dimos/internal/ui"
)

const (
	homebrewInstallURL = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"
	nixInstallURL      = "https://install.determinate.systems/nix"
	uvInstallURL       = "https://astral.sh/uv/install.sh"
)

func homebrewCheck(e Env) check.Check {
	script := e.installers().script
	return check.Check{
		Label:        "Homebrew",
		Detect:       onPath("brew")(e),
		Instructions: check.Static("Install Homebrew: https://brew.sh"),
		Autofix: &check.Autofix{
			Prompt: "Install Homebrew via the official installer?",
			Run: func(ctx context.Context, _ config.Config) error {
				if err := script.Bash(ctx, homebrewInstallURL); err != nil {
					return err
				}
				e.UI.Log(ui.LevelWarn, "Homebrew installed. You may need to add it to your PATH; follow the instructions printed above.")
				return nil
			},
		},
	}
}

// xcodeCLTCheck handles the inverted exit codes of `xcode-select
// --install`: 0 means a GUI installer was launched and nothing is
// installed yet, non-zero usually means the tools are already present.
func xcodeCLTCheck(e Env) check.Check {
	return check.Check{
		Label:        "Xcode Command Line Tools",
		Detect:       succeeds("xcode-select", "-p")(e),
		Instructions: check.Static("Run `xcode-select --install` and complete the dialog, then re-run `dimos init`."),
		Autofix: &check.Autofix{
			Prompt: "Trigger the Xcode Command Line Tools installer?",
			Run: func(ctx context.Context, _ config.Config) error {
				err := e.Runner.Run(ctx, "xcode-select", "--install")
				if err == nil {
					e.UI.Log(ui.LevelWarn, "A dialog has opened to install Xcode Command Line Tools.\nComplete the installation, then re-run `dimos init`.")
					return errs.New(errs.AutofixFailed, "Xcode Command Line Tools installation is still running").
						WithHint("re-run `dimos init` after the installation finishes")
				}
				return errs.Wrap(err, errs.AutofixFailed, "could not install Xcode Command Line Tools automatically").
					WithHint("run `xcode-select --install` manually")
			},
			RecheckOnFailure: true,
		},
	}
}

func nixInstallerCheck(e Env) check.Check {
	script := e.installers().script
	return check.Check{
		Label:        "nix",
		Detect:       onPath("nix")(e),
		Instructions: check.Static("Install nix manually: https://nixos.org/download/"),
		Autofix: &check.Autofix{
			Prompt: "Install nix via the Determinate Systems installer?",
			Run: func(ctx context.Context, _ config.Config) error {
				if err := script.Pipe(ctx, nixInstallURL, "install"); err != nil {
					return err
				}
				e.UI.Log(ui.LevelWarn, "Open a new terminal so nix is on PATH before continuing.")
				return nil
			},
		},
	}
}

// uvCheck uses the official installer on every platform.
func uvCheck(e Env) check.Check {
	script := e.installers().script
	return check.Check{
		Label:        "uv",
		Detect:       onPath("uv")(e),
		Instructions: check.Static("Install uv manually: https://docs.astral.sh/uv/getting-started/installation/"),
		Autofix: &check.Autofix{
			Prompt: "Install uv via the official installer (astral.sh)?",
			Run: func(ctx context.Context, _ config.Config) error {
				return script.Pipe(ctx, uvInstallURL)
			},
		},
	}
}

func preCommitPipCheck(e Env) check.Check {
	uv := e.installers().uv
	return check.Check{
		Label:        "pre-commit",
		Detect:       onPath("pre-commit")(e),
		Instructions: check.Static("Install pre-commit: https://pre-commit.com/#install"),
		Autofix: &check.Autofix{
			Prompt: "Install pre-commit via pip (uv tool install)?",
			Run: func(ctx context.Context, _ config.Config) error {
				return uv.ToolInstall(ctx, "pre-commit")
			},
		},
	}
}
