// Package captions turns a speech recognition transcript of synthesized
// narration into word-level captions whose text is the narration itself.
//
// The transcript is treated as noisy ground truth for timing only. Merge
// repairs token-level artifacts (detached punctuation, split contractions)
// and Aligner walks narration words and merged tokens with a bounded
// lookahead window so each narration word receives exactly one timed entry.
// Paginate groups entries into on-screen pages and WriteSRT exports pages for
// review.
//
// Everything in this package is a pure function of its inputs and is safe to
// call concurrently.
package captions
