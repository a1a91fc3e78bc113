// Package tts renders narration text to WAV audio with the Piper command-line
// synthesizer.
package tts
