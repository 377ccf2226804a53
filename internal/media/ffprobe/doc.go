// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe against a file; Parse decodes output captured
// elsewhere. Result helpers expose what the transcription pipeline needs:
// the audio stream count and the container duration.
package ffprobe
