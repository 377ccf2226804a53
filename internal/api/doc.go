// Package api defines wire-format types and converters for the HTTP API
// layer. It translates transcripts, alignment results, and player state
// into transport-friendly DTOs that the browser player and the CLI can
// render without coupling to internal types.
//
// # Key Types
//
// Lyric: one timed line, serialized as {"time": seconds, "text": line}.
//
// LyricsResponse: the body of the synchronous transcription route.
//
// PlayerStatus / ActiveResponse: player session snapshots and the active
// line for a clock value.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// # Converters
//
// FromTranscript, FromActive, FromPlayerStatus, and HTTPStatusForKind.
//
// # Design Notes
//
// DTOs use snake_case JSON tags. Times are float seconds exactly as the
// provider reported them; no rounding is applied.
package api
