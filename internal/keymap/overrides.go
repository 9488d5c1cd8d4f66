package keymap

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// overrideFile is the on-disk format:
//
//	keys:
//	  META: command
//	  HANGUL: hangul
type overrideFile struct {
	Keys map[string]string `yaml:"keys"`
}

// LoadOverrides reads a YAML keymap override file.
func LoadOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keymap file: %w", err)
	}

	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOverridesInvalid, err)
	}

	for token, name := range f.Keys {
		if strings.TrimSpace(token) == "" || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: empty token or name (%q: %q)", ErrOverridesInvalid, token, name)
		}
	}

	return f.Keys, nil
}
