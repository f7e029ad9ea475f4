// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Working-directory-relative directory names used when nothing overrides
// them.
const (
	DefaultConfigDirName = ".craft-compass"
	DefaultDataDirName   = ".craft-compass-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CRAFT_CONFIG_DIR"
	EnvDataDir   = "CRAFT_DATA_DIR"
)

// appDirName is the per-user directory name under the platform config and
// data roots.
const appDirName = "craft-compass"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/craft-compass (fallback ~/.config/craft-compass)
// macOS:   ~/Library/Application Support/craft-compass
// Windows: %APPDATA%/craft-compass
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
}

// DefaultDataDir returns the per-user data directory.
//
// Linux:   $XDG_DATA_HOME/craft-compass (fallback ~/.local/share/craft-compass)
// macOS:   ~/Library/Application Support/craft-compass
// Windows: %APPDATA%/craft-compass
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > CRAFT_CONFIG_DIR env > default. The default is
// $(CWD)/.craft-compass, or DefaultConfigDir() when global is set.
func ResolveConfigDir(flag string, global bool) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	if global {
		return DefaultConfigDir()
	}
	return cwdJoin(DefaultConfigDirName)
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configValue (data_dir from config.yaml) > CRAFT_DATA_DIR env >
// default. The default is $(CWD)/.craft-compass-db, or DefaultDataDir()
// when global is set.
func ResolveDataDir(flag, configValue string, global bool) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if global {
		return DefaultDataDir()
	}
	return cwdJoin(DefaultDataDirName)
}

func cwdJoin(name string) (string, error) {
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
