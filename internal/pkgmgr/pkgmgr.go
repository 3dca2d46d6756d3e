// Package pkgmgr wraps the installers dimos drives and the read-only probes
// its detection predicates use. Installers stream to the terminal through
// host.Runner.Run; probes never do.
package pkgmgr

import (
	"context"
	"strings"

	"dimos/internal/host"
)

// Apt drives Debian's apt-get through sudo.
type Apt struct {
	R host.Runner
}

// Update refreshes the package index.
func (a Apt) Update(ctx context.Context) error {
	return a.R.Run(ctx, "sudo", "apt-get", "update")
}

// Install installs pkgs non-interactively.
func (a Apt) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"apt-get", "install", "-y"}, pkgs...)
	return a.R.Run(ctx, "sudo", args...)
}

// Installed reports whether dpkg considers pkg fully installed.
func (a Apt) Installed(ctx context.Context, pkg string) bool {
	out, err := a.R.Output(ctx, "dpkg-query", "-W", "-f=${Status}", pkg)
	return err == nil && strings.TrimSpace(out) == "install ok installed"
}

// Brew drives Homebrew.
type Brew struct {
	R host.Runner
}

func (b Brew) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"install"}, pkgs...)
	return b.R.Run(ctx, "brew", args...)
}

// Nix installs into the user's nix profile.
type Nix struct {
	R host.Runner
}

// Install runs `nix profile install nixpkgs#<attr>`.
func (n Nix) Install(ctx context.Context, attr string) error {
	return n.R.Run(ctx, "nix", "profile", "install", "nixpkgs#"+attr)
}

// UV installs Python command-line tools into isolated environments.
type UV struct {
	R host.Runner
}

// ToolInstall runs `uv tool install <pkg>`.
func (u UV) ToolInstall(ctx context.Context, pkg string) error {
	return u.R.Run(ctx, "uv", "tool", "install", pkg)
}

// Script runs official remote installers.
type Script struct {
	R host.Runner
}

// Pipe downloads url with curl and pipes it to sh, passing shArgs to the
// script.
func (s Script) Pipe(ctx context.Context, url string, shArgs ...string) error {
	return s.R.Run(ctx, "sh", "-c", PipeCommand(url, shArgs...))
}

// Bash runs an installer that expects to be evaluated by bash rather than
// read from stdin (Homebrew's).
func (s Script) Bash(ctx context.Context, url string) error {
	return s.R.Run(ctx, "sh", "-c", `/bin/bash -c "$(curl -fsSL `+shellQuote(url)+`)"`)
}

// PipeCommand is the shell line Pipe runs.
func PipeCommand(url string, shArgs ...string) string {
	line := "curl --proto '=https' --tlsv1.2 -LsSf " + shellQuote(url) + " | sh"
	if len(shArgs) > 0 {
		quoted := make([]string, len(shArgs))
		for i, a := range shArgs {
			quoted[i] = shellQuote(a)
		}
		line += " -s -- " + strings.Join(quoted, " ")
	}
	return line
}

// PkgConfig probes pkg-config modules.
type PkgConfig struct {
	R host.Runner
}

// Exists reports whether pkg-config knows module.
func (p PkgConfig) Exists(ctx context.Context, module string) bool {
	return p.R.Succeeds(ctx, "pkg-config", "--exists", module)
}

// Which reports whether any of names is on PATH.
func Which(r host.Runner, names ...string) bool {
	for _, name := range names {
		if _, err := r.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:=@#+,", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
