package captions

const (
	// DefaultLookahead is how many tokens (forward) or words (reverse) past the
	// cursor the aligner inspects before forcing a pairing.
	DefaultLookahead = 4
	// DefaultExtrapolateMs is the span given to each word left over after the
	// transcript runs out.
	DefaultExtrapolateMs int64 = 250
)

// Aligner maps merged transcript tokens onto narration words.
//
// The walk keeps one cursor over words and one over tokens. Every word emits
// exactly one entry. Matching is bounded to a fixed lookahead window, which
// keeps the work linear in the input size; narration and transcript are
// expected to differ only locally.
type Aligner struct {
	lookahead     int
	extrapolateMs int64
}

// AlignerOption customizes an Aligner.
type AlignerOption func(*Aligner)

// WithLookahead sets the lookahead window. Non-positive values keep the default.
func WithLookahead(n int) AlignerOption {
	return func(a *Aligner) {
		if n > 0 {
			a.lookahead = n
		}
	}
}

// WithExtrapolateMs sets the span assigned to words after the transcript is
// exhausted. Non-positive values keep the default.
func WithExtrapolateMs(ms int64) AlignerOption {
	return func(a *Aligner) {
		if ms > 0 {
			a.extrapolateMs = ms
		}
	}
}

// NewAligner constructs an aligner with the default window and extrapolation
// span, adjusted by opts.
func NewAligner(opts ...AlignerOption) *Aligner {
	a := &Aligner{
		lookahead:     DefaultLookahead,
		extrapolateMs: DefaultExtrapolateMs,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Lookahead returns the configured window.
func (a *Aligner) Lookahead() int { return a.lookahead }

// ExtrapolateMs returns the configured extrapolation span.
func (a *Aligner) ExtrapolateMs() int64 { return a.extrapolateMs }

var defaultAligner = NewAligner()

// Align aligns narration against merged tokens using the default settings.
func Align(narration string, merged []MergedToken) []Entry {
	return defaultAligner.Align(narration, merged)
}

// Align returns one entry per whitespace-separated narration word, in reading
// order, carrying the word's exact text. An empty narration or an empty token
// list yields an empty result.
func (a *Aligner) Align(narration string, merged []MergedToken) []Entry {
	words := SplitWords(narration)
	if len(words) == 0 || len(merged) == 0 {
		return []Entry{}
	}

	wordKeys := make([]string, len(words))
	for i, word := range words {
		wordKeys[i] = NormalizeToken(word)
	}
	tokenKeys := make([]string, len(merged))
	for i, token := range merged {
		tokenKeys[i] = NormalizeToken(token.Text)
	}

	entries := make([]Entry, 0, len(words))
	previousEnd := func(fallback int64) int64 {
		if len(entries) == 0 {
			return fallback
		}
		return entries[len(entries)-1].EndMs
	}

	wi := 0
	for oi, word := range words {
		if wi >= len(merged) {
			start := previousEnd(0)
			entries = append(entries, newEntry(word, start, start+a.extrapolateMs))
			continue
		}

		current := merged[wi]
		if m, ok := a.forwardMatch(wordKeys[oi], tokenKeys, wi); ok {
			entries = append(entries, newEntry(word, current.StartMs, merged[m].EndMs))
			wi = m + 1
			continue
		}

		if a.matchesLaterWord(tokenKeys[wi], wordKeys, oi) {
			// The current token belongs to an upcoming word; leave it in place.
			entries = append(entries, newEntry(word, previousEnd(current.StartMs), current.StartMs))
			continue
		}

		entries = append(entries, newEntry(word, current.StartMs, current.EndMs))
		wi++
	}
	return entries
}

// forwardMatch scans tokens wi..wi+lookahead for the first one equal to key.
func (a *Aligner) forwardMatch(key string, tokenKeys []string, wi int) (int, bool) {
	if key == "" {
		return 0, false
	}
	last := min(wi+a.lookahead, len(tokenKeys)-1)
	for j := wi; j <= last; j++ {
		if tokenKeys[j] == key {
			return j, true
		}
	}
	return 0, false
}

// matchesLaterWord reports whether tokenKey equals one of the words
// oi+1..oi+lookahead.
func (a *Aligner) matchesLaterWord(tokenKey string, wordKeys []string, oi int) bool {
	if tokenKey == "" {
		return false
	}
	last := min(oi+a.lookahead, len(wordKeys)-1)
	for k := oi + 1; k <= last; k++ {
		if wordKeys[k] == tokenKey {
			return true
		}
	}
	return false
}

// newEntry clamps end to start so overlapping transcript timestamps never
// produce an inverted span.
func newEntry(text string, start, end int64) Entry {
	if end < start {
		end = start
	}
	return Entry{Text: text, StartMs: start, EndMs: end}
}
