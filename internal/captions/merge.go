package captions

import (
	"regexp"
	"strings"
)

var (
	punctuationSuffix = regexp.MustCompile(`^[,.!?;:)\]}…]+$`)
	contractionSuffix = regexp.MustCompile(`(?i)^'(t|s|re|ll|ve|d|m|n)$`)
)

// IsFusibleSuffix reports whether trimmed token text is a punctuation run or a
// contraction tail that belongs to the token before it.
func IsFusibleSuffix(text string) bool {
	return punctuationSuffix.MatchString(text) || contractionSuffix.MatchString(text)
}

// Merge fuses punctuation-only and contraction-suffix tokens onto the
// preceding token. Blank tokens are dropped before any merge decision. The
// fused token keeps its start and takes the suffix's end.
func Merge(raw []RawToken) []MergedToken {
	merged := make([]MergedToken, 0, len(raw))
	for _, token := range raw {
		text := strings.TrimSpace(token.Text)
		if text == "" {
			continue
		}
		if len(merged) > 0 && IsFusibleSuffix(text) {
			last := &merged[len(merged)-1]
			last.Text += text
			last.EndMs = token.EndMs
			continue
		}
		merged = append(merged, MergedToken{
			Text:    text,
			StartMs: token.StartMs,
			EndMs:   token.EndMs,
		})
	}
	return merged
}
