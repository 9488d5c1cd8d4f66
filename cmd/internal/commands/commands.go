package commands

import (
	"fmt"

	"remotekey/internal/keymap"
)

type Globals struct {
	Debug   bool
	Version string
	Config  string
}

func newMapper(path string) (*keymap.Mapper, error) {
	if path == "" {
		return keymap.New(nil), nil
	}
	overrides, err := keymap.LoadOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("load keymap %s: %w", path, err)
	}
	return keymap.New(overrides), nil
}
