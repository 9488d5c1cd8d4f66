//go:build darwin

package autostart

import (
	"os"
	"path/filepath"
)

func plistPath(label string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "LaunchAgents", label+".plist"), nil
}

func enable(e Entry) error {
	path, err := plistPath(e.Label)
	if err != nil {
		return err
	}
	data, err := renderPlist(e)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func disable(e Entry) error {
	path, err := plistPath(e.Label)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func isEnabled(e Entry) bool {
	path, err := plistPath(e.Label)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
