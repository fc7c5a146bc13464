// Package fs locates glowrays files on disk and loads previewed documents.
package fs

import (
	"os"
	"path/filepath"
)

const appName = "glowrays"

// DefaultConfigPath returns the default settings file location.
// Uses XDG_CONFIG_HOME if set, otherwise falls back to
// ~/.config/glowrays/settings.yaml, or the working directory if home is
// unavailable.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "settings.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join("."+appName, "settings.yaml")
	}
	return filepath.Join(home, ".config", appName, "settings.yaml")
}

// DefaultLogPath returns the default log file location.
// Uses XDG_CACHE_HOME if set, otherwise falls back to
// ~/.cache/glowrays/glowrays.log, or the system temp directory if home is
// unavailable.
func DefaultLogPath() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, appName+".log")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), appName, appName+".log")
	}
	return filepath.Join(home, ".cache", appName, appName+".log")
}
