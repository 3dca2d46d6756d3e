package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dimos/internal/errs"
	"dimos/internal/logx"
)

// stderrTail is how much of a failing command's stderr is kept for the error.
const stderrTail = 4096

// Runner runs external programs. Detection code only uses LookPath,
// Succeeds and Output, which never attach the terminal; installers use Run.
type Runner interface {
	LookPath(name string) (string, error)
	// Succeeds runs the command quietly and reports whether it exited 0.
	Succeeds(ctx context.Context, name string, args ...string) bool
	// Output runs the command quietly and returns its stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// Run attaches the terminal and streams output. A non-zero exit is an
	// EXTERNAL_PROCESS_FAILED error carrying the tail of stderr.
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string

	logger zerolog.Logger
}

// NewExecRunner returns a runner wired to the process's standard streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logx.Component("host"),
	}
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *ExecRunner) Succeeds(ctx context.Context, name string, args ...string) bool {
	cmd := r.command(ctx, name, args)
	err := cmd.Run()
	r.logger.Trace().Str("command", name).Strs("args", args).Bool("ok", err == nil).Msg("probe")
	return err == nil
}

func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := r.command(ctx, name, args)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return string(out), processError(name, args, err, stderr.Bytes())
	}
	return string(out), nil
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args)
	tail := &tailBuffer{max: stderrTail}
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = stderrFor(r.Stderr, tail)

	start := time.Now()
	r.logger.Info().Str("command", name).Strs("args", args).Msg("running")
	err := cmd.Run()
	r.logger.Debug().Str("command", name).Dur("duration", time.Since(start)).Err(err).Msg("finished")
	if err != nil {
		return processError(name, args, err, tail.Bytes())
	}
	return nil
}

// stderrFor hands a terminal to the child as is so installers and shells
// keep colour and prompts; the tail is only captured from non-terminals.
func stderrFor(w io.Writer, tail *tailBuffer) io.Writer {
	if w == nil {
		return tail
	}
	if f, ok := w.(*os.File); ok && stderrIsTerminal(f) {
		return f
	}
	return io.MultiWriter(w, tail)
}

func (r *ExecRunner) command(ctx context.Context, name string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

func processError(name string, args []string, err error, stderr []byte) error {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	e := errs.Wrapf(err, errs.ExternalProcessFailed, "`%s` failed", line).
		WithDetail("command", line)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e = e.WithDetail("exit_code", exitErr.ExitCode())
	}
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		e = e.WithDetail("stderr", msg)
	}
	if errors.Is(err, exec.ErrNotFound) {
		e = e.WithHint("%s is not on PATH", name)
	}
	return e
}

// Stderr returns the captured stderr attached to an EXTERNAL_PROCESS_FAILED
// error, if any.
func Stderr(err error) string {
	v, ok := errs.Detail(err, "stderr")
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) Bytes() []byte {
	return t.buf
}
