// Package whisperx produces word-level timestamps for narration audio.
//
// Service normalizes an audio file to mono 16 kHz WAV with ffmpeg, runs
// WhisperX through uvx with JSON output, and converts its word_segments into
// captions.RawToken values. Prepare verifies the external binaries once per
// Service before the first transcription.
package whisperx
