// Package whisperx is the local transcription provider. It runs WhisperX
// through uvx on the host.
//
// A transcription request is handled in four steps:
//   - the payload is written to a private work directory and probed with ffprobe
//   - the source is cut into overlapping windows decoded to mono PCM WAV
//   - WhisperX transcribes each window into its own output directory
//   - window segments are offset onto the global timeline and merged
//
// Configuration options (model, CUDA, VAD method, window geometry) are passed
// via Config. Tests inject a command runner and a duration probe so neither
// ffmpeg nor uvx is required.
package whisperx
