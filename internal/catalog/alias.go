// file: internal/catalog/alias.go
// version: 1.0.0
// guid: 6d8e0f2a-4b6c-4d7e-9f0a-1b2c3d4e5f6a

package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AliasTable maps variant genre spellings onto canonical genre names, so
// "Sci-Fi", "SciFi" and "Science-Fiction" all land on "Science Fiction".
// Lookups are case-insensitive on the variant side.
type AliasTable struct {
	aliases map[string]string
}

// LoadAliasTable reads a YAML file of the form:
//
//	Science Fiction:
//	  - Sci-Fi
//	  - SciFi
//
// where the key is the canonical name and the values are variants.
func LoadAliasTable(path string) (*AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genre alias file: %w", err)
	}
	return ParseAliasTable(data)
}

// ParseAliasTable parses YAML alias data. See LoadAliasTable for the format.
func ParseAliasTable(data []byte) (*AliasTable, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse genre aliases: %w", err)
	}

	t := &AliasTable{aliases: make(map[string]string)}
	for canonical, variants := range raw {
		for _, v := range variants {
			t.aliases[strings.ToLower(strings.TrimSpace(v))] = canonical
		}
	}
	return t, nil
}

// Canonical returns the canonical genre name for g, or g unchanged when no
// alias is registered.
func (t *AliasTable) Canonical(g string) string {
	if t == nil {
		return g
	}
	if canonical, ok := t.aliases[strings.ToLower(strings.TrimSpace(g))]; ok {
		return canonical
	}
	return g
}

// Apply rewrites every entry's genres to canonical form, dropping duplicates
// that collapse together, and returns the same slice for chaining.
func (t *AliasTable) Apply(entries []Entry) []Entry {
	if t == nil {
		return entries
	}
	for i := range entries {
		seen := make(map[string]bool, len(entries[i].Genres))
		out := entries[i].Genres[:0]
		for _, g := range entries[i].Genres {
			canonical := t.Canonical(g)
			if !seen[canonical] {
				seen[canonical] = true
				out = append(out, canonical)
			}
		}
		entries[i].Genres = out
	}
	return entries
}
