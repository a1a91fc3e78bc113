// Package audiocache persists synthesized narration so unchanged scenes skip
// text-to-speech and transcription on later runs.
//
// Entries live in a SQLite database (modernc.org/sqlite, WAL mode) next to a
// blob directory holding one WAV file per entry. Keys are BLAKE3 digests of
// the narration text and the engine identity. Raw transcription tokens are
// stored rather than captions so alignment settings can change without
// invalidating the cache.
package audiocache
