package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"dimos/internal/errs"
	"dimos/internal/logx"
	"dimos/internal/ui"
)

// BackupPath is where the bytes of an unparseable config file are kept.
// The name is fixed so repeated recoveries overwrite one file.
func BackupPath(path string) string {
	return path + ".corrupt.bak"
}

// Store owns the configuration for one process invocation.
type Store struct {
	path      string
	cfg       Config
	backup    string
	recovered bool
	logger    zerolog.Logger
}

// LoadOrRecover reads the config at path. A missing file yields defaults
// without touching disk. An unparseable file is copied verbatim to
// BackupPath and replaced in memory by defaults; attended runs confirm the
// reset first and a refusal returns a CONFIG_CORRUPT error.
func LoadOrRecover(path string, u ui.UI, attended bool) (*Store, error) {
	s := &Store{path: path, cfg: Default(), logger: logx.Component("config")}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug().Str("path", path).Msg("no config file, using defaults")
			return s, nil
		}
		return nil, errs.Wrapf(err, errs.ConfigIO, "read config %s", path).
			WithHint("check the permissions on %s", path)
	}

	cfg, parseErr := Unmarshal(data)
	if parseErr == nil {
		s.cfg = cfg
		s.logger.Debug().Str("path", path).Bool("init_completed", cfg.InitCompleted).Int("answers", len(cfg.Answers)).Msg("config loaded")
		return s, nil
	}

	backup := BackupPath(path)
	s.logger.Warn().Err(parseErr).Str("path", path).Str("backup", backup).Bool("attended", attended).Msg("config is corrupt")

	if attended {
		prompt := fmt.Sprintf("Config is corrupt (%v).\nReset to defaults? (corrupt file → %s)", parseErr, backup)
		reset, err := u.Confirm(prompt, true)
		if err != nil {
			return nil, err
		}
		if !reset {
			return nil, errs.Wrapf(parseErr, errs.ConfigCorrupt, "config %s is corrupt", path).
				WithHint("fix or delete %s and re-run", path).
				WithDetail("path", path)
		}
	}

	if err := writeFile(backup, data); err != nil {
		return nil, errs.Wrapf(err, errs.ConfigIO, "back up corrupt config to %s", backup)
	}
	s.backup = backup
	s.recovered = true
	ui.Logf(u, ui.LevelWarn, "Corrupt config backed up to %s. Starting fresh.", backup)
	return s, nil
}

// Read loads the config at path for display or detection only. Unlike
// LoadOrRecover it never writes: a missing file yields defaults and an
// unparseable one is a CONFIG_CORRUPT error.
func Read(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, errs.Wrapf(err, errs.ConfigIO, "read config %s", path)
	}
	cfg, err := Unmarshal(data)
	if err != nil {
		return Config{}, errs.Wrapf(err, errs.ConfigCorrupt, "config %s is corrupt", path).
			WithHint("run `dimos init` to reset it, or fix it with `dimos config edit`").
			WithDetail("path", path)
	}
	return cfg, nil
}

// Config returns the in-memory record. Callers mutate it in place and call
// Save once their operation completes.
func (s *Store) Config() *Config {
	return &s.cfg
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.path
}

// RecoveredBackup returns the backup written during LoadOrRecover, if any.
func (s *Store) RecoveredBackup() (string, bool) {
	return s.backup, s.recovered
}

// Save overwrites the config file with the in-memory record, creating
// parent directories as needed.
func (s *Store) Save() error {
	data, err := s.cfg.Marshal()
	if err != nil {
		return errs.Wrap(err, errs.ConfigIO, "encode config")
	}
	if err := writeFile(s.path, data); err != nil {
		return errs.Wrapf(err, errs.ConfigIO, "write config %s", s.path).
			WithHint("check the permissions on %s", filepath.Dir(s.path))
	}
	s.logger.Debug().Str("path", s.path).Msg("config saved")
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
