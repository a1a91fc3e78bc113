package captions

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// SplitWords splits narration into words on runs of whitespace. Each word keeps
// its surface form, attached punctuation included.
func SplitWords(text string) []string {
	return strings.Fields(text)
}

// NormalizeToken lowercases s and strips every character that is not an ASCII
// letter or digit. The result is the comparison key used during alignment.
func NormalizeToken(s string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "")
}
