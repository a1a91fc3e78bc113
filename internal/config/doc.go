// Package config loads, normalizes, and validates Reelcast configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// REELCAST_TTS_MODEL. The Config type centralizes every knob the CLI and HTTP
// service need: audio and cache directories, video timing parameters, caption
// alignment tunables, and the external speech engines.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
