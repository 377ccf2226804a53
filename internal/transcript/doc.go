// Package transcript holds the timed-text model shared by providers, the
// alignment engine, and the HTTP layer.
//
// A Transcript is an ordered, immutable sequence of Segments for one audio
// source. Normalize is the single gate every provider result passes through:
// it trims and NFC-normalizes text, drops empty segments, clamps negative
// starts, and stable-sorts by start time. MergeWindows stitches results from
// overlapping inference windows back onto the global timeline, and
// FilterHallucinations removes filler phrases speech models tend to invent
// during instrumental passages.
package transcript
