// Package strings provides bounded text helpers used at input boundaries.
package strings

import (
	"strings"
	"unicode/utf8"
)

// Clip trims surrounding whitespace and caps the result at max code points.
// A non-positive max returns the trimmed value unchanged.
//
// Example:
//
//	Clip("  Ada Lovelace  ", 3)
//	// Returns: "Ada"
func Clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Len returns the length of s in code points.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Dedupe removes repeated values, keeping the first occurrence of each.
// Order is preserved.
//
// Example:
//
//	Dedupe([]string{"foo", "bar", "foo"})
//	// Returns: []string{"foo", "bar"}
func Dedupe[T comparable](values []T) []T {
	if len(values) == 0 {
		return values
	}

	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
