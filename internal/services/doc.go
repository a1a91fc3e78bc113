// Package services defines shared utilities consumed by the narration pipeline
// and the external engine adapters.
//
// Key responsibilities:
//   - Context helpers that stamp article slugs, scene positions, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     retryable or permanent and flag deadline expiries as timeouts.
//
// Subpackages wrap the speech synthesis and speech recognition binaries behind
// small, injectable command runners so they can be exercised in tests.
package services
