package provider

import (
	"fmt"
	"log/slog"
	"strings"

	"lyricsync/internal/config"
	"lyricsync/internal/logging"
	"lyricsync/internal/services/whisperapi"
	"lyricsync/internal/services/whisperx"
	"lyricsync/internal/transcription"
)

// New returns the provider named by transcription.provider, wrapped with the
// hallucination filter when transcription.filter_hallucinations is set.
func New(cfg *config.Config, logger *slog.Logger) (transcription.Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider: config required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var p transcription.Provider
	switch strings.ToLower(strings.TrimSpace(cfg.Transcription.Provider)) {
	case config.ProviderRemote:
		p = whisperapi.NewClient(whisperapi.Config{
			APIKey:         cfg.Remote.APIKey,
			BaseURL:        cfg.Remote.BaseURL,
			Model:          cfg.Remote.Model,
			MaxRetries:     cfg.Remote.MaxRetries,
			MaxUploadBytes: cfg.MaxUploadBytes(),
		}, whisperapi.WithLogger(logger))
	case config.ProviderLocal:
		p = newLocal(cfg, logger)
	default:
		return nil, fmt.Errorf("provider: unknown transcription provider %q", cfg.Transcription.Provider)
	}

	if cfg.Transcription.FilterHallucinations {
		p = transcription.Filtered(p, logger)
	}
	return p, nil
}

func newLocal(cfg *config.Config, logger *slog.Logger) *whisperx.Service {
	svc := whisperx.NewService(whisperx.Config{
		Model:         cfg.Local.Model,
		CUDAEnabled:   cfg.Local.CUDAEnabled,
		VADMethod:     cfg.Local.VADMethod,
		HFToken:       cfg.Local.HFToken,
		WindowSeconds: cfg.Local.WindowSeconds,
		StrideSeconds: cfg.Local.StrideSeconds,
		SampleRate:    cfg.Local.SampleRate,
		WorkDir:       cfg.Paths.WorkDir,
		FFmpegBinary:  cfg.FFmpegBinary(),
		FFprobeBinary: cfg.FFprobeBinary(),
	}, logger)
	if strings.EqualFold(cfg.Local.VADMethod, whisperx.VADMethodPyannote) && strings.TrimSpace(cfg.Local.HFToken) == "" {
		logging.WarnWithContext(logger, "pyannote VAD requires a Hugging Face token; using silero", "vad_fallback",
			logging.String(logging.FieldComponent, "provider"),
			logging.String(logging.FieldErrorHint, "set local.hf_token or HF_TOKEN"),
			logging.String(logging.FieldImpact, "voice activity detection uses silero"),
		)
		svc.SetVADMethod(whisperx.VADMethodSilero)
	}
	logger.Info("local transcription provider configured",
		logging.String(logging.FieldComponent, "provider"),
		logging.String("model", svc.Model()),
		logging.Bool("cuda_enabled", svc.CUDAEnabled()),
		logging.Float64("window_seconds", cfg.Local.WindowSeconds),
	)
	return svc
}
