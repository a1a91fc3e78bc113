// Package pipeline turns storyboard narration into audio with word captions.
//
// ProduceCaptions and PackageAudio are the pure steps: merge raw transcription
// tokens, align them to the narration, and bundle the result for a scene.
// Narrator drives the external engines (speech synthesis, duration probing,
// transcription) behind small interfaces, applying per-call timeouts, retries,
// an optional rate limit, and the narration cache. A scene whose engines fail
// is left without audio; the rest of the batch continues.
package pipeline
