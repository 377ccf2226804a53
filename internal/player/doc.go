// Package player coordinates one playback session: the selected track, the
// transcription request in flight, the installed transcript, and the
// playback clock.
//
// A Session is the only writer of its transcript. Transcription results are
// tagged with the request and track they were started for and are committed
// only while both are still current, so a late result for a replaced track
// or a superseded request is discarded. At most one request is outstanding
// per session; the configured policy either cancels the older request
// (supersede) or refuses the newer one (reject).
package player
