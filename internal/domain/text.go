package domain

import (
	"regexp"
	"strings"
)

const (
	// MaxNameLength caps sanitized display names
	MaxNameLength = 20

	// MinWordLength is the shortest acceptable submission
	MinWordLength = 3
)

var (
	nameDisallowed = regexp.MustCompile(`[^a-zA-Z0-9 _.-]+`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	wordPattern    = regexp.MustCompile(`^[a-z]+$`)
)

// SanitizeName trims, collapses whitespace, strips disallowed characters and
// caps the length of a display name. Returns "" if nothing survives.
func SanitizeName(raw string) string {
	name := nameDisallowed.ReplaceAllString(raw, "")
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if len(name) > MaxNameLength {
		name = strings.TrimSpace(name[:MaxNameLength])
	}
	return name
}

// NormalizeCode uppercases and trims a room code
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NormalizeWord case-folds and trims a submitted word
func NormalizeWord(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidWord reports whether a normalized word is submittable at all:
// lowercase letters only, minimum length. Chunk and dictionary checks
// happen separately.
func ValidWord(word string) bool {
	return len(word) >= MinWordLength && wordPattern.MatchString(word)
}
