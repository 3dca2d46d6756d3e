package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	appName        = "dimos"
	homeEnv        = "DIMOS_HOME"
	configFileName = "config.toml"
)

// UserPaths captures canonical per-user locations for dimos.
type UserPaths struct {
	Home       string
	ConfigFile string
	LogsDir    string
}

// Resolve determines the per-user locations. A non-empty configFlag overrides
// the configuration file location; DIMOS_HOME overrides the home directory.
// Nothing is created on disk.
func Resolve(configFlag string) (UserPaths, error) {
	home, err := homeDir()
	if err != nil {
		return UserPaths{}, err
	}

	up := UserPaths{
		Home:       home,
		ConfigFile: filepath.Join(home, configFileName),
		LogsDir:    filepath.Join(xdg.StateHome, appName),
	}

	if configFlag != "" {
		abs, err := filepath.Abs(configFlag)
		if err != nil {
			return UserPaths{}, fmt.Errorf("resolve config path: %w", err)
		}
		up.ConfigFile = abs
	}
	return up, nil
}

func homeDir() (string, error) {
	if override, ok := os.LookupEnv(homeEnv); ok && override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", homeEnv, err)
		}
		return abs, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}
	return filepath.Join(home, "."+appName), nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
