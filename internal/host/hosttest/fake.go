// Package hosttest provides a scripted host.Runner for tests.
package hosttest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"dimos/internal/errs"
)

// Fake answers runner calls from tables keyed by the command line
// ("name arg1 arg2"). Anything not listed fails.
type Fake struct {
	mu sync.Mutex

	// Paths lists executables LookPath finds.
	Paths map[string]bool
	// Probes maps a command line to its Succeeds result.
	Probes map[string]bool
	// Outputs maps a command line to its stdout.
	Outputs map[string]string
	// RunErrors maps a command line to the error Run returns; absent lines
	// succeed.
	RunErrors map[string]error
	// OnRun is called after every Run, e.g. to mark a tool installed.
	OnRun func(line string)

	Calls []string
	Ran   []string
}

// New returns an empty fake.
func New() *Fake {
	return &Fake{
		Paths:     map[string]bool{},
		Probes:    map[string]bool{},
		Outputs:   map[string]string{},
		RunErrors: map[string]error{},
	}
}

// Line joins a command and its args the way the fake keys them.
func Line(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

// Fail builds the error ExecRunner would return for a failed command.
func Fail(line, stderr string) error {
	e := errs.Newf(errs.ExternalProcessFailed, "`%s` failed", line).WithDetail("command", line)
	if stderr != "" {
		e = e.WithDetail("stderr", stderr)
	}
	return e
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "lookpath "+name)
	if f.Paths[name] {
		return "/usr/bin/" + name, nil
	}
	return "", fmt.Errorf("%s: %w", name, errors.New("executable file not found in $PATH"))
}

func (f *Fake) Succeeds(_ context.Context, name string, args ...string) bool {
	line := Line(name, args...)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, line)
	return f.Probes[line]
}

func (f *Fake) Output(_ context.Context, name string, args ...string) (string, error) {
	line := Line(name, args...)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, line)
	out, ok := f.Outputs[line]
	if !ok {
		return "", Fail(line, "")
	}
	return out, nil
}

func (f *Fake) Run(_ context.Context, name string, args ...string) error {
	line := Line(name, args...)
	f.mu.Lock()
	f.Calls = append(f.Calls, line)
	f.Ran = append(f.Ran, line)
	err := f.RunErrors[line]
	hook := f.OnRun
	f.mu.Unlock()
	if hook != nil {
		hook(line)
	}
	return err
}
