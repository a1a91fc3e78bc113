// Package ffprobe wraps ffprobe JSON output for narration audio files.
//
// Inspect executes ffprobe and returns the parsed Result. Prober adapts
// Inspect to the duration lookups the narration pipeline performs.
package ffprobe
