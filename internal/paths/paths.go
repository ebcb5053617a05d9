// Package paths locates goscribe's config file and prepares output
// directories. It imports only the standard library.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the optional TOML config file.
const ConfigFileName = "goscribe.toml"

// BaseDir returns ~/.goscribe.
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".goscribe"), nil
}

// ConfigPath returns the first config file found in the working directory or
// ~/.goscribe. No config at all is ("", nil).
func ConfigPath() (string, error) {
	candidates := []string{ConfigFileName}
	if base, err := BaseDir(); err == nil {
		candidates = append(candidates, filepath.Join(base, ConfigFileName))
	}

	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		return abs, nil
	}
	return "", nil
}

// EnsureParentDir creates the directory that will hold file (0750).
func EnsureParentDir(file string) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// ExpandTilde replaces a leading ~ with the home directory.
func ExpandTilde(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
