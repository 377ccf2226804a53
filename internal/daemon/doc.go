// Package daemon coordinates the long-running lyricsync process.
//
// It wires configuration, the transcription provider, and the player session
// into a single lifecycle with flock-based locking to prevent multiple
// instances, and serves the HTTP API the browser player talks to. The API
// is routed with chi, guarded by an optional static bearer token or HS256
// JWT, and opened to the player's origin through CORS.
//
// Keep orchestration logic here: transcription and alignment live in their
// respective packages while the daemon focuses on startup, shutdown, and
// request plumbing.
package daemon
