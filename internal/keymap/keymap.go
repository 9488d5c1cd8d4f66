// Package keymap resolves symbolic key tokens sent by clients into the key
// names understood by the input injectors.
package keymap

import (
	"sort"
	"strings"
)

// Kind distinguishes a single key from a modifier+key combination.
type Kind int

const (
	// Plain is a single key that may be held down.
	Plain Kind = iota
	// Combination is a modifier+key pair that is always pressed momentarily.
	Combination
)

// Key is the resolved form of a token.
type Key struct {
	Kind     Kind
	Modifier string // set only for Combination
	Name     string
}

// IsCombination reports whether k is a modifier+key pair.
func (k Key) IsCombination() bool {
	return k.Kind == Combination
}

func (k Key) String() string {
	if k.Kind == Combination {
		return k.Modifier + "+" + k.Name
	}
	return k.Name
}

// Mapper looks tokens up in the static table plus any overrides.
// It is safe for concurrent use once constructed.
type Mapper struct {
	table map[string]string
}

// New creates a Mapper from the default table with overrides merged on top.
// Override tokens are matched case-insensitively.
func New(overrides map[string]string) *Mapper {
	table := make(map[string]string, len(defaultTable)+len(overrides))
	for token, name := range defaultTable {
		table[token] = name
	}
	for token, name := range overrides {
		table[strings.ToUpper(strings.TrimSpace(token))] = name
	}
	return &Mapper{table: table}
}

// Resolve converts a client token into a Key. Unknown tokens fall back to
// their lowercased literal; Resolve never fails.
func (m *Mapper) Resolve(token string) Key {
	// A lowercase letter is typed literally so that case survives.
	if len(token) == 1 && token[0] >= 'a' && token[0] <= 'z' {
		return Key{Kind: Plain, Name: token}
	}

	if modifier, key, ok := splitCombination(token); ok {
		return Key{
			Kind:     Combination,
			Modifier: m.lookup(modifier),
			Name:     m.lookup(key),
		}
	}

	return Key{Kind: Plain, Name: m.lookup(token)}
}

func (m *Mapper) lookup(token string) string {
	if name, ok := m.table[strings.ToUpper(token)]; ok {
		return name
	}
	return strings.ToLower(token)
}

// splitCombination accepts exactly one '+' with a non-empty token on each side.
func splitCombination(token string) (string, string, bool) {
	parts := strings.Split(token, "+")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Entry is one row of the effective mapping table.
type Entry struct {
	Token string `json:"token" yaml:"token"`
	Name  string `json:"name" yaml:"name"`
}

// Table returns the effective mapping table sorted by token.
func (m *Mapper) Table() []Entry {
	entries := make([]Entry, 0, len(m.table))
	for token, name := range m.table {
		entries = append(entries, Entry{Token: token, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Token < entries[j].Token
	})
	return entries
}
