// Package paths resolves where docket keeps its configuration, its staging
// file and its local SQLite database.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names docket's directories under the platform locations.
const appName = "docket"

// File names under the resolved directories.
const (
	ConfigFileName = "config.yaml"
	SQLiteFileName = "docket.db"
)

// Environment variables that override the platform defaults.
const (
	EnvConfigDir = "DOCKET_CONFIG_DIR"
	EnvDataDir   = "DOCKET_DATA_DIR"
)

// platformDir can be swapped in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/docket (fallback ~/.config/docket)
// macOS:   ~/Library/Application Support/docket
// Windows: %APPDATA%/docket
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// DefaultDataDir returns the platform data directory. It holds the staging
// file between a scrape and the commit that drains it.
//
// Linux:   $XDG_DATA_HOME/docket (fallback ~/.local/share/docket)
// Others:  same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	return DefaultConfigDir()
}

func xdgDir(env, homeRel string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, appName), nil
}

// ResolveConfigDir applies flag > DOCKET_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	return resolve(flag, "", EnvConfigDir, DefaultConfigDir)
}

// ResolveDataDir applies flag > DOCKET_DATA_DIR > DefaultDataDir.
func ResolveDataDir(flag string) (string, error) {
	return resolve(flag, "", EnvDataDir, DefaultDataDir)
}

// StagingFile returns the staging file path: the configured value when set,
// otherwise fileName under dataDir.
func StagingFile(configured, dataDir, fileName string) (string, error) {
	return resolve(configured, filepath.Join(dataDir, fileName), "", nil)
}

// SQLiteFile returns the SQLite database path: the configured value when
// set, otherwise docket.db under dataDir.
func SQLiteFile(configured, dataDir string) (string, error) {
	return resolve(configured, filepath.Join(dataDir, SQLiteFileName), "", nil)
}

// resolve returns the first non-empty of explicit, fallback, the env
// variable, or def(), made absolute.
func resolve(explicit, fallback, env string, def func() (string, error)) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}
	if fallback != "" {
		return filepath.Abs(fallback)
	}
	if env != "" {
		if v := os.Getenv(env); v != "" {
			return filepath.Abs(v)
		}
	}
	return def()
}
