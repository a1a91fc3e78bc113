package captions

// RawToken is one timed token as emitted by a speech recognition engine.
// Tokens may be sub-word fragments or bare punctuation.
type RawToken struct {
	Text    string `json:"text"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
}

// MergedToken is a transcript token after punctuation and contraction
// fragments were fused onto the word before them.
type MergedToken struct {
	Text    string `json:"text"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
}

// Entry is a single caption: one narration word with its best-effort span.
type Entry struct {
	Text    string `json:"text"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
}

// DurationMs returns the length of the entry span.
func (e Entry) DurationMs() int64 {
	return e.EndMs - e.StartMs
}
