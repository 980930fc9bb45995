// Package results holds per-commit benchmark results and collates them into
// one wide table of commits by benchmark name.
package results

import (
	"slices"

	"github.com/Sumatoshi-tech/benchsweep/pkg/gitlib"
)

// Placeholder is rendered for a benchmark missing from a commit's results.
const Placeholder = "-"

// Map is an insertion-ordered mapping from benchmark name to a
// string-encoded timing value. Keys are unique; setting an existing key
// replaces its value in place. The zero value is an empty map ready to use.
type Map struct {
	keys   []string
	values map[string]string
}

// NewMap creates a map from alternating name/value pairs.
func NewMap(pairs ...string) *Map {
	m := &Map{}

	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}

	return m
}

// Set stores value under name.
func (m *Map) Set(name, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}

	if _, exists := m.values[name]; !exists {
		m.keys = append(m.keys, name)
	}

	m.values[name] = value
}

// Get returns the value stored under name.
func (m *Map) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}

	v, ok := m.values[name]

	return v, ok
}

// GetOrDefault returns the value stored under name, or def when absent.
func (m *Map) GetOrDefault(name, def string) string {
	if v, ok := m.Get(name); ok {
		return v
	}

	return def
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

// Empty reports whether the map has no entries.
func (m *Map) Empty() bool {
	return m.Len() == 0
}

// Names returns the keys in insertion order.
func (m *Map) Names() []string {
	if m == nil {
		return nil
	}

	return slices.Clone(m.keys)
}

// CommitRecord pairs a visited commit with its benchmark results.
type CommitRecord struct {
	Commit  gitlib.CommitID
	Results *Map
}
