package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Ava", "Ava"},
		{"trims", "  Bo  ", "Bo"},
		{"collapses whitespace", "Ava \t  the   Great", "Ava the Great"},
		{"strips disallowed", "A<v>a!", "Ava"},
		{"keeps allowed punctuation", "dr_who.2-b", "dr_who.2-b"},
		{"caps length", "abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnopqrst"},
		{"empty after strip", "@#$%^", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABC234", NormalizeCode(" abc234 "))
}

func TestNormalizeWord(t *testing.T) {
	assert.Equal(t, "banana", NormalizeWord("  BaNaNa "))
}

func TestValidWord(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"banana", true},
		{"ant", true},
		{"ab", false},      // too short
		{"", false},        // empty
		{"ban4na", false},  // digits
		{"ban ana", false}, // spaces
		{"bañana", false},  // non-ascii
		{"Banana", false},  // must already be normalized
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidWord(tt.word), "word %q", tt.word)
	}
}
