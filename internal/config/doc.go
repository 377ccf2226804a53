// Package config loads, normalizes, and validates lyricsync configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY. The Config type centralizes every knob the daemon and CLI
// need: which transcription provider to use, how the local provider windows
// long audio, how the player session treats concurrent requests, and how the
// HTTP API authenticates callers.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
