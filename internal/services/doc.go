// Package services defines shared utilities consumed by the transcription
// providers, the player session, and the HTTP layer.
//
// Key responsibilities:
//   - Error markers for the transcription failure taxonomy plus the Wrap
//     helper that attaches component and operation context while keeping the
//     marker discoverable through errors.Is.
//   - KindOf and UserMessage, which turn any wrapped failure into the stable
//     kind string and the single human-readable notification shown to users.
//   - Context helpers that stamp request and track identifiers so log lines
//     emitted deep inside a provider can be correlated with the upload that
//     triggered them.
//
// Provider implementations live in subpackages (whisperapi, whisperx) and
// only import this package, never each other.
package services
