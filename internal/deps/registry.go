// Package deps maps (dependency, installer) pairs to checks and assembles
// the built-in install sequences.
package deps

import (
	"fmt"
	"sort"
	"strings"

	"dimos/internal/check"
	"dimos/internal/errs"
	"dimos/internal/host"
	"dimos/internal/pkgmgr"
	"dimos/internal/ui"
)

// ID names a logical dependency. The same ID has one check per installer.
type ID string

const (
	Homebrew     ID = "homebrew"
	XcodeCLT     ID = "xcode-clt"
	NixTool      ID = "nix"
	NixFlakes    ID = "nix-flakes"
	Curl         ID = "curl"
	Git          ID = "git"
	GitLFS       ID = "git-lfs"
	Gxx          ID = "g++"
	PortAudio    ID = "portaudio"
	LibTurboJPEG ID = "libturbojpeg"
	PythonDev    ID = "python-dev"
	PreCommit    ID = "pre-commit"
	UV           ID = "uv"
)

// Kind is the installer a check remediates with.
type Kind string

const (
	Apt  Kind = "apt"
	Brew Kind = "brew"
	Nix  Kind = "nix"
	Pip  Kind = "pip"
	// Script covers official installers (curl | sh, xcode-select).
	Script Kind = "script"
)

// Env is what check builders close over.
type Env struct {
	Runner host.Runner
	// UI receives follow-up warnings from autofix actions.
	UI ui.UI
	// Home is the user's home directory; nix.conf lives under it.
	Home string
	// SystemNixConf is the system-wide nix.conf. Empty means
	// /etc/nix/nix.conf.
	SystemNixConf string
}

type key struct {
	id   ID
	kind Kind
}

type builder func(Env) check.Check

// Registry builds checks for (ID, Kind) pairs.
type Registry struct {
	env      Env
	builders map[key]builder
}

// NewRegistry returns a registry populated with every known check.
func NewRegistry(env Env) *Registry {
	if env.SystemNixConf == "" {
		env.SystemNixConf = "/etc/nix/nix.conf"
	}
	return &Registry{env: env, builders: builtins()}
}

// Build returns the check for id remediated by kind.
func (r *Registry) Build(id ID, kind Kind) (check.Check, error) {
	b, ok := r.builders[key{id, kind}]
	if !ok {
		return check.Check{}, errs.Newf(errs.InvalidInput, "no %s check for %s", kind, id).
			WithHint("known installers for %s: %s", id, joinKinds(r.Kinds(id)))
	}
	c := b(r.env)
	if err := c.Validate(); err != nil {
		return check.Check{}, fmt.Errorf("build %s/%s: %w", id, kind, err)
	}
	return c, nil
}

// Kinds lists the installers registered for id.
func (r *Registry) Kinds(id ID) []Kind {
	var kinds []Kind
	for k := range r.builders {
		if k.id == id {
			kinds = append(kinds, k.kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// IDs lists every registered dependency.
func (r *Registry) IDs() []ID {
	seen := map[ID]bool{}
	var ids []ID
	for k := range r.builders {
		if !seen[k.id] {
			seen[k.id] = true
			ids = append(ids, k.id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Ref names one (ID, Kind) pair in a sequence definition.
type Ref struct {
	ID   ID
	Kind Kind
}

// BuildAll builds refs in order.
func (r *Registry) BuildAll(refs []Ref) ([]check.Check, error) {
	checks := make([]check.Check, 0, len(refs))
	for _, ref := range refs {
		c, err := r.Build(ref.ID, ref.Kind)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, nil
}

func joinKinds(kinds []Kind) string {
	if len(kinds) == 0 {
		return "none"
	}
	s := make([]string, len(kinds))
	for i, k := range kinds {
		s[i] = string(k)
	}
	return strings.Join(s, ", ")
}

// installers bundles the package manager wrappers for an Env.
type installers struct {
	apt    pkgmgr.Apt
	brew   pkgmgr.Brew
	nix    pkgmgr.Nix
	uv     pkgmgr.UV
	script pkgmgr.Script
	pc     pkgmgr.PkgConfig
}

func (e Env) installers() installers {
	return installers{
		apt:    pkgmgr.Apt{R: e.Runner},
		brew:   pkgmgr.Brew{R: e.Runner},
		nix:    pkgmgr.Nix{R: e.Runner},
		uv:     pkgmgr.UV{R: e.Runner},
		script: pkgmgr.Script{R: e.Runner},
		pc:     pkgmgr.PkgConfig{R: e.Runner},
	}
}
