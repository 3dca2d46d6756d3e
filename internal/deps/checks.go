package deps

import (
	"context"
	"fmt"

	"dimos/internal/check"
	"dimos/internal/config"
	"dimos/internal/pkgmgr"
)

type detectFunc = func(ctx context.Context, cfg config.Config) bool

// variant is one installer's take on a package.
type variant struct {
	label  string
	pkg    string // apt package, brew formula or nixpkgs attribute
	prompt string
	detect func(Env) detectFunc
}

// packageDef describes a dependency every package manager can install.
type packageDef struct {
	id           ID
	instructions string
	detect       func(Env) detectFunc
	apt          variant
	brew         variant
	nix          variant
}

var packages = []packageDef{
	{
		id:           Curl,
		instructions: "Install curl via your package manager (apt/brew/nix).",
		detect:       onPath("curl"),
		apt:          variant{label: "curl", pkg: "curl"},
		brew:         variant{label: "curl", pkg: "curl"},
		nix:          variant{label: "curl", pkg: "curl"},
	},
	{
		id:           Git,
		instructions: "Install git via your package manager (apt/brew/nix).",
		detect:       onPath("git"),
		apt:          variant{label: "git", pkg: "git"},
		brew:         variant{label: "git", pkg: "git"},
		nix:          variant{label: "git", pkg: "git"},
	},
	{
		id:           GitLFS,
		instructions: "Install git-lfs via your package manager, then run `git lfs install`.",
		detect:       onPath("git-lfs"),
		apt:          variant{label: "git-lfs", pkg: "git-lfs"},
		brew:         variant{label: "git-lfs", pkg: "git-lfs"},
		nix:          variant{label: "git-lfs", pkg: "git-lfs"},
	},
	{
		id:           Gxx,
		instructions: "Install g++ (C++ compiler) via your package manager.",
		detect:       onPath("g++", "c++"),
		apt:          variant{label: "g++", pkg: "g++"},
		brew:         variant{label: "g++", pkg: "gcc", prompt: "Install gcc (includes g++) via Homebrew?"},
		nix:          variant{label: "g++", pkg: "gcc", prompt: "Install gcc via nix?"},
	},
	{
		id:           PortAudio,
		instructions: "Install portaudio dev headers via your package manager.",
		detect:       pkgConfig("portaudio-2.0"),
		apt:          variant{label: "portaudio19-dev", pkg: "portaudio19-dev", detect: aptInstalled("portaudio19-dev")},
		brew:         variant{label: "portaudio", pkg: "portaudio"},
		nix:          variant{label: "portaudio", pkg: "portaudio"},
	},
	{
		id:           LibTurboJPEG,
		instructions: "Install libturbojpeg dev headers via your package manager.",
		detect:       pkgConfig("libturbojpeg"),
		apt:          variant{label: "libturbojpeg0-dev", pkg: "libturbojpeg0-dev", detect: aptInstalled("libturbojpeg0-dev")},
		brew:         variant{label: "libturbojpeg", pkg: "jpeg-turbo"},
		nix:          variant{label: "libturbojpeg", pkg: "libjpeg-turbo"},
	},
	{
		id:           PythonDev,
		instructions: "Install Python development headers via your package manager.",
		detect:       succeeds("python3-config", "--prefix"),
		apt:          variant{label: "python3-dev", pkg: "python3-dev", detect: aptInstalled("python3-dev")},
		brew:         variant{label: "python3 (with headers)", pkg: "python3", prompt: "Install python3 via Homebrew (includes headers)?"},
		nix:          variant{label: "python3 (with headers)", pkg: "python3"},
	},
	{
		id:           PreCommit,
		instructions: "Install pre-commit: https://pre-commit.com/#install",
		detect:       onPath("pre-commit"),
		apt:          variant{label: "pre-commit", pkg: "pre-commit"},
		brew:         variant{label: "pre-commit", pkg: "pre-commit"},
		nix:          variant{label: "pre-commit", pkg: "pre-commit"},
	},
}

func builtins() map[key]builder {
	m := map[key]builder{
		{Homebrew, Script}: homebrewCheck,
		{XcodeCLT, Script}: xcodeCLTCheck,
		{NixTool, Script}:  nixInstallerCheck,
		{NixFlakes, Nix}:   nixFlakesCheck,
		{UV, Script}:       uvCheck,
		{PreCommit, Pip}:   preCommitPipCheck,
	}
	for _, def := range packages {
		m[key{def.id, Apt}] = aptCheck(def, def.apt)
		m[key{def.id, Brew}] = brewCheck(def, def.brew)
		m[key{def.id, Nix}] = nixCheck(def, def.nix)
	}
	return m
}

func (v variant) detector(def packageDef) func(Env) detectFunc {
	if v.detect != nil {
		return v.detect
	}
	return def.detect
}

func aptCheck(def packageDef, v variant) builder {
	return func(e Env) check.Check {
		apt := e.installers().apt
		return check.Check{
			Label:        v.label,
			Detect:       v.detector(def)(e),
			Instructions: check.Static(def.instructions),
			Autofix: &check.Autofix{
				Prompt: promptOr(v.prompt, "Install %s via apt?", v.pkg),
				Run: func(ctx context.Context, _ config.Config) error {
					return apt.Install(ctx, v.pkg)
				},
			},
		}
	}
}

func brewCheck(def packageDef, v variant) builder {
	return func(e Env) check.Check {
		brew := e.installers().brew
		return check.Check{
			Label:        v.label,
			Detect:       v.detector(def)(e),
			Instructions: check.Static(def.instructions),
			Autofix: &check.Autofix{
				Prompt: promptOr(v.prompt, "Install %s via Homebrew?", v.pkg),
				Run: func(ctx context.Context, _ config.Config) error {
					return brew.Install(ctx, v.pkg)
				},
			},
		}
	}
}

// nixCheck opts into re-detection: `nix profile install` fails when the
// package is already in the profile.
func nixCheck(def packageDef, v variant) builder {
	return func(e Env) check.Check {
		nix := e.installers().nix
		return check.Check{
			Label:        v.label,
			Detect:       v.detector(def)(e),
			Instructions: check.Static(def.instructions),
			Autofix: &check.Autofix{
				Prompt: promptOr(v.prompt, "Install %s via nix?", v.pkg),
				Run: func(ctx context.Context, _ config.Config) error {
					return nix.Install(ctx, v.pkg)
				},
				RecheckOnFailure: true,
			},
		}
	}
}

func promptOr(prompt, format, pkg string) string {
	if prompt != "" {
		return prompt
	}
	return fmt.Sprintf(format, pkg)
}

func onPath(names ...string) func(Env) detectFunc {
	return func(e Env) detectFunc {
		return func(context.Context, config.Config) bool {
			return pkgmgr.Which(e.Runner, names...)
		}
	}
}

func aptInstalled(pkg string) func(Env) detectFunc {
	return func(e Env) detectFunc {
		apt := e.installers().apt
		return func(ctx context.Context, _ config.Config) bool {
			return apt.Installed(ctx, pkg)
		}
	}
}

func pkgConfig(module string) func(Env) detectFunc {
	return func(e Env) detectFunc {
		pc := e.installers().pc
		return func(ctx context.Context, _ config.Config) bool {
			return pc.Exists(ctx, module)
		}
	}
}

func succeeds(name string, args ...string) func(Env) detectFunc {
	return func(e Env) detectFunc {
		return func(ctx context.Context, _ config.Config) bool {
			return e.Runner.Succeeds(ctx, name, args...)
		}
	}
}
