// Command lyricsync transcribes songs into timed lyric lines and serves them
// to players over HTTP.
//
// Subcommands:
//   - serve: run the HTTP API and player session
//   - transcribe: transcribe a local audio file
//   - align: look up the active line of a saved transcript
//   - config: create, show, and validate configuration
//   - deps: check external binaries
//   - token: mint a bearer token for the HTTP API
package main
