// Command reelcast narrates article storyboards and computes caption and
// scene timing for the video renderer.
//
// Pure commands (align, merge, timeline) work offline from JSON files. The
// narrate command drives Piper, ffprobe, and WhisperX; status reports which of
// those engines are installed; serve exposes the alignment API over HTTP.
package main
