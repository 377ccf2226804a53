// Package whisperapi implements the remote transcription provider against an
// OpenAI-compatible /audio/transcriptions endpoint.
//
// Requests are multipart uploads asking for verbose_json with segment
// timestamps. Transient failures (408, 429, 5xx, network timeouts) are
// retried with capped exponential backoff that honours Retry-After. HTTP
// failures are classified into the services markers: an exhausted quota
// becomes ErrQuotaExceeded, unreadable audio ErrDecodeFailure, and
// everything the caller cannot fix ErrProviderUnavailable.
package whisperapi
