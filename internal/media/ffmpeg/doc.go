// Package ffmpeg builds and runs the ffmpeg invocations that turn arbitrary
// audio into the mono PCM WAV speech models consume.
package ffmpeg
