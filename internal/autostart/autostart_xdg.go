//go:build !darwin && !windows

package autostart

import (
	"os"
	"path/filepath"
)

// desktopPath follows the XDG autostart location.
func desktopPath(label string) (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "autostart", label+".desktop"), nil
}

func enable(e Entry) error {
	path, err := desktopPath(e.Label)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, renderDesktop(e), 0o644)
}

func disable(e Entry) error {
	path, err := desktopPath(e.Label)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func isEnabled(e Entry) bool {
	path, err := desktopPath(e.Label)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
