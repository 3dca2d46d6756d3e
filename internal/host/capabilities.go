// Package host describes the machine dimos runs on and how to run programs
// there.
package host

import (
	"context"
	"os"
	"runtime"
	"sort"

	"github.com/mattn/go-isatty"

	"dimos/internal/logx"
)

// Package manager executables whose presence selects a sequence.
const (
	ManagerApt  = "apt-get"
	ManagerBrew = "brew"
	ManagerNix  = "nix"
)

// Capabilities are the host facts computed once per process.
type Capabilities struct {
	OS       string          `json:"os"`
	Arch     string          `json:"arch"`
	Attended bool            `json:"attended"`
	Shell    string          `json:"shell"`
	Managers map[string]bool `json:"managers"`
}

// DetectOptions controls how attended mode is decided.
type DetectOptions struct {
	// NonInteractive forces unattended mode.
	NonInteractive bool
	Stdin          *os.File
	Stdout         *os.File
}

// Detect probes the host once.
func Detect(r Runner, opts DetectOptions) Capabilities {
	caps := Capabilities{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Shell:    os.Getenv("SHELL"),
		Managers: make(map[string]bool),
	}
	if caps.Shell == "" {
		caps.Shell = "sh"
	}
	for _, m := range []string{ManagerApt, ManagerBrew, ManagerNix} {
		_, err := r.LookPath(m)
		caps.Managers[m] = err == nil
	}
	caps.Attended = !opts.NonInteractive && os.Getenv("CI") == "" &&
		isTerminal(opts.Stdin) && isTerminal(opts.Stdout)

	logger := logx.Component("host")
	logger.Debug().
		Str("os", caps.OS).
		Str("arch", caps.Arch).
		Bool("attended", caps.Attended).
		Strs("managers", caps.ManagerNames()).
		Msg("host capabilities")
	return caps
}

// Has reports whether the named package manager is on PATH.
func (c Capabilities) Has(manager string) bool {
	return c.Managers[manager]
}

// ManagerNames lists the package managers found, sorted.
func (c Capabilities) ManagerNames() []string {
	var names []string
	for name, ok := range c.Managers {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SpawnShell runs an interactive shell so environment changes made by
// installers take effect. It returns when the user exits the shell.
func SpawnShell(ctx context.Context, r Runner, shell string) error {
	if shell == "" {
		shell = "sh"
	}
	return r.Run(ctx, shell)
}

// stderrIsTerminal is swapped in tests.
var stderrIsTerminal = isTerminal

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
