package transcription

import (
	"context"
	"math"

	"lyricsync/internal/transcript"
)

// Provider converts audio into timed text.
type Provider interface {
	// Name identifies the backend in logs and status output.
	Name() string
	// Transcribe blocks until the transcript is ready, ctx is done, or the
	// backend fails. The audio payload is never modified.
	Transcribe(ctx context.Context, audio Audio, opts Options) (transcript.Transcript, error)
}

// Audio is an uploaded audio payload.
type Audio struct {
	// Name is the original file name, used for format detection.
	Name string
	// MediaType is the declared MIME type, possibly empty.
	MediaType string
	Data      []byte
}

// Size returns the payload length in bytes.
func (a Audio) Size() int {
	return len(a.Data)
}

// Options tunes a single transcription request.
type Options struct {
	// Language is a language hint; "" or "auto" requests detection.
	Language string
	// Progress, when set, receives completion percentages in [0, 100].
	Progress func(percent float64)
}

// Report forwards percent to the progress callback, clamped to [0, 100].
func (o Options) Report(percent float64) {
	if o.Progress == nil || math.IsNaN(percent) {
		return
	}
	o.Progress(math.Max(0, math.Min(100, percent)))
}
