package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConsoleLevel maps the -v count to the level printed on stderr.
func ConsoleLevel(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Setup installs the global logger. The console gets events at
// ConsoleLevel(verbosity) and above; the run log file in logDir gets
// everything from debug up. When logDir is empty or cannot be created the
// logger falls back to console only and the error is returned alongside a
// usable no-op closer.
func Setup(console io.Writer, verbosity int, logDir string) (io.Closer, error) {
	consoleWriter := &levelFilter{
		min: ConsoleLevel(verbosity),
		w: zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.Kitchen,
		},
	}

	writers := []io.Writer{consoleWriter}
	var closer io.Closer = nopCloser{}
	var fileErr error
	if logDir != "" {
		file, err := openRunLog(logDir)
		if err != nil {
			fileErr = err
		} else {
			writers = append(writers, &levelFilter{min: zerolog.DebugLevel, w: file})
			closer = file
		}
	}

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	if verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}
	log.Logger = logger

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("dir", logDir).Msg("logging to console only")
	}
	return closer, fileErr
}

// Component returns the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// RunLogName is the file name used for a run started at t.
func RunLogName(t time.Time) string {
	return "dimos-" + t.Format("20060102-150405") + ".log"
}

func openRunLog(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure logs directory: %w", err)
	}
	path := filepath.Join(dir, RunLogName(time.Now()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

// levelFilter drops events below min before they reach w.
type levelFilter struct {
	min zerolog.Level
	w   io.Writer
}

func (f *levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
