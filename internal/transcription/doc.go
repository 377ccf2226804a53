// Package transcription defines the contract every speech-recognition
// backend satisfies.
//
// A Provider turns an immutable Audio payload into a normalized
// transcript.Transcript, honouring context cancellation and reporting
// progress through Options.Progress. Failures are classified with the
// services markers so callers can render a single notification without
// knowing which backend ran.
//
// Format resolution (media type, then file extension, then content sniffing)
// lives here so both backends reject unsupported uploads the same way.
// Filtered wraps a Provider with the hallucination filter.
package transcription
