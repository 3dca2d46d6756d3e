package deps

import (
	"context"

	"dimos/internal/config"
	"dimos/internal/host"
	"dimos/internal/sequence"
)

var (
	aptRefs = []Ref{
		{Curl, Apt},
		{Git, Apt},
		{Gxx, Apt},
		{PortAudio, Apt},
		{GitLFS, Apt},
		{LibTurboJPEG, Apt},
		{PythonDev, Apt},
		{PreCommit, Apt},
		{UV, Script},
	}

	// nix and flakes come first; every later check installs through them.
	nixRefs = []Ref{
		{NixTool, Script},
		{NixFlakes, Nix},
		{Curl, Nix},
		{Git, Nix},
		{GitLFS, Nix},
		{Gxx, Nix},
		{PortAudio, Nix},
		{LibTurboJPEG, Nix},
		{PythonDev, Nix},
		{PreCommit, Nix},
		{UV, Script},
	}

	// Homebrew needs the command line tools before it can install.
	brewRefs = []Ref{
		{XcodeCLT, Script},
		{Homebrew, Script},
		{Curl, Brew},
		{Git, Brew},
		{GitLFS, Brew},
		{Gxx, Brew},
		{PortAudio, Brew},
		{LibTurboJPEG, Brew},
		{PythonDev, Brew},
		{PreCommit, Brew},
		{UV, Script},
	}
)

// Sequences returns the built-in sequences in the order they are offered.
func Sequences(reg *Registry) ([]sequence.Sequence, error) {
	aptChecks, err := reg.BuildAll(aptRefs)
	if err != nil {
		return nil, err
	}
	nixChecks, err := reg.BuildAll(nixRefs)
	if err != nil {
		return nil, err
	}
	brewChecks, err := reg.BuildAll(brewRefs)
	if err != nil {
		return nil, err
	}
	apt := reg.env.installers().apt

	return []sequence.Sequence{
		{
			Name:        "linux_apt",
			Label:       "Linux — apt",
			Description: "Debian and Ubuntu system packages via apt-get",
			Preamble: []sequence.Step{{
				Label: "sudo apt-get update",
				Run: func(ctx context.Context, _ config.Config) error {
					return apt.Update(ctx)
				},
			}},
			Checks: aptChecks,
			Requires: func(c host.Capabilities) bool {
				return c.OS == "linux" && c.Has(host.ManagerApt)
			},
		},
		{
			Name:        "linux_nix",
			Label:       "Linux — nix",
			Description: "user profile packages via nix (installs nix if needed)",
			Checks:      nixChecks,
			Requires:    osIs("linux"),
		},
		{
			Name:        "macos_brew",
			Label:       "macOS — Homebrew",
			Description: "Homebrew formulae (installs Homebrew if needed)",
			Checks:      brewChecks,
			Requires:    osIs("darwin"),
		},
		{
			Name:        "macos_nix",
			Label:       "macOS — nix",
			Description: "user profile packages via nix (installs nix if needed)",
			Checks:      nixChecks,
			Requires:    osIs("darwin"),
		},
	}, nil
}

// Find returns the sequence with the given name.
func Find(seqs []sequence.Sequence, name string) (sequence.Sequence, bool) {
	for _, s := range seqs {
		if s.Name == name {
			return s, true
		}
	}
	return sequence.Sequence{}, false
}

func osIs(goos string) func(host.Capabilities) bool {
	return func(c host.Capabilities) bool {
		return c.OS == goos
	}
}
