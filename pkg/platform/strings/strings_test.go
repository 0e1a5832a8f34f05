package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{name: "empty", input: "", max: 10, expected: ""},
		{name: "trims whitespace", input: "  foo  ", max: 10, expected: "foo"},
		{name: "caps after trimming", input: "   abcdef", max: 3, expected: "abc"},
		{name: "exact length kept", input: "abc", max: 3, expected: "abc"},
		{name: "counts code points not bytes", input: "ÉléonoreÅ", max: 3, expected: "Élé"},
		{name: "non-positive max leaves value", input: " abc ", max: 0, expected: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clip(tt.input, tt.max))
		})
	}
}

func TestLen(t *testing.T) {
	assert.Equal(t, 2, Len("Jo"))
	assert.Equal(t, 2, Len("Żó"))
	assert.Equal(t, 0, Len(""))
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "single element", input: []string{"foo"}, expected: []string{"foo"}},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"foo", "bar", "foo", "baz", "bar"},
			expected: []string{"foo", "bar", "baz"},
		},
		{
			name:     "preserves case",
			input:    []string{"Foo", "foo", "FOO"},
			expected: []string{"Foo", "foo", "FOO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dedupe(tt.input))
		})
	}
}
