package transcription

import (
	"context"
	"log/slog"

	"lyricsync/internal/logging"
	"lyricsync/internal/transcript"
)

type filtered struct {
	inner  Provider
	logger *slog.Logger
}

// Filtered wraps p so every successful result passes through
// transcript.FilterHallucinations.
func Filtered(p Provider, logger *slog.Logger) Provider {
	return &filtered{inner: p, logger: logging.NewComponentLogger(logger, "hallucination-filter")}
}

func (f *filtered) Name() string {
	return f.inner.Name()
}

func (f *filtered) Transcribe(ctx context.Context, audio Audio, opts Options) (transcript.Transcript, error) {
	result, err := f.inner.Transcribe(ctx, audio, opts)
	if err != nil {
		return result, err
	}
	kept, removals := transcript.FilterHallucinations(result.Segments)
	if len(removals) == 0 {
		return result, nil
	}
	logger := logging.WithContext(ctx, f.logger)
	for _, removal := range removals {
		logger.Debug("segment removed",
			logging.String("reason", removal.Reason),
			logging.Float64("time", removal.Segment.Start),
			logging.String("text", removal.Segment.Text),
		)
	}
	logger.Info("hallucination filter applied",
		logging.Int("removed", len(removals)),
		logging.Int("kept", len(kept)),
	)
	result.Segments = kept
	return result, nil
}
