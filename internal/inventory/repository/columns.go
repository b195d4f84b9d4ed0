package repository

import (
	"strings"
	"unicode"
)

// columns maps lowercased header names to their position
type columns map[string]int

func columnIndex(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

// idx returns the column position for a lowercased header name, or -1
func (c columns) idx(name string) int {
	if i, ok := c[name]; ok {
		return i
	}
	return -1
}

// find returns the position of the first header containing any of the given
// substrings (case-insensitive), or -1. Master sheets name their columns
// inconsistently, so lookups are fuzzy.
func (c columns) find(substrings ...string) int {
	best := -1
	for name, i := range c {
		for _, sub := range substrings {
			if strings.Contains(name, strings.ToLower(sub)) {
				if best == -1 || i < best {
					best = i
				}
			}
		}
	}
	return best
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// NormalizeName builds the merge key used to join stock rows to the drug
// master: all whitespace removed, lowercased
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
