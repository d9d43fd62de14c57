package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DataEnv overrides the default data directory.
const DataEnv = "BUBBLY_DATA"

// DefaultDataDir returns the system-appropriate data directory, honoring BUBBLY_DATA.
func DefaultDataDir() string {
	if dir := os.Getenv(DataEnv); dir != "" {
		return dir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "bubbly-data"
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming", "bubbly")
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "bubbly")
	default: // Linux and other UNIX-like systems.
		return filepath.Join(homeDir, ".local", "share", "bubbly")
	}
}

// ExpandPath expands a leading "~/" and makes path absolute.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand %q: %w", path, err)
		}
		path = filepath.Join(homeDir, path[2:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %q: %w", path, err)
	}
	return abs, nil
}
