package whisperx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	langpkg "lyricsync/internal/language"
	"lyricsync/internal/logging"
	"lyricsync/internal/media/ffmpeg"
	"lyricsync/internal/media/ffprobe"
	"lyricsync/internal/services"
	"lyricsync/internal/transcript"
	"lyricsync/internal/transcription"
)

const component = "whisperx"

// Service is the local transcription provider.
type Service struct {
	cfg           Config
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
	probe         func(ctx context.Context, path string) (ffprobe.Result, error)
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, logger *slog.Logger) *Service {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = DefaultWindowSeconds
	}
	if cfg.StrideSeconds < 0 || cfg.StrideSeconds >= cfg.WindowSeconds {
		cfg.StrideSeconds = 0
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = ffmpeg.DefaultSampleRate
	}
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = ffmpeg.Command
	}
	if cfg.FFprobeBinary == "" {
		cfg.FFprobeBinary = "ffprobe"
	}
	return &Service{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, component),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// WithDurationProbe replaces the ffprobe inspection (for testing).
func (s *Service) WithDurationProbe(probe func(ctx context.Context, path string) (ffprobe.Result, error)) {
	s.probe = probe
}

// SetVADMethod updates the VAD method at runtime (used when no HF token is available).
func (s *Service) SetVADMethod(method string) {
	s.cfg.VADMethod = method
}

// Name implements transcription.Provider.
func (s *Service) Name() string {
	return "local"
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// CUDAEnabled returns whether CUDA is enabled.
func (s *Service) CUDAEnabled() bool {
	return s.cfg.CUDAEnabled
}

// Transcribe implements transcription.Provider. The payload is copied to a
// private work directory that is removed before returning.
func (s *Service) Transcribe(ctx context.Context, audio transcription.Audio, opts transcription.Options) (transcript.Transcript, error) {
	var empty transcript.Transcript
	format, err := transcription.Validate(component, audio, SupportedFormats)
	if err != nil {
		return empty, err
	}
	lang, err := langpkg.Normalize(opts.Language)
	if err != nil {
		return empty, services.Wrap(services.ErrInvalidInput, component, "validate", "unrecognized language hint", err)
	}

	if s.cfg.WorkDir != "" {
		if err := os.MkdirAll(s.cfg.WorkDir, 0o755); err != nil {
			return empty, services.Wrap(services.ErrProviderUnavailable, component, "prepare", "ensure work dir", err)
		}
	}
	workDir, err := os.MkdirTemp(s.cfg.WorkDir, "whisperx-")
	if err != nil {
		return empty, services.Wrap(services.ErrProviderUnavailable, component, "prepare", "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	source := filepath.Join(workDir, "source."+string(format))
	if err := os.WriteFile(source, audio.Data, 0o600); err != nil {
		return empty, services.Wrap(services.ErrProviderUnavailable, component, "prepare", "write payload", err)
	}

	probe, err := s.inspect(ctx, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return empty, services.Classify(component, "probe", ctxErr)
		}
		return empty, services.Wrap(services.ErrDecodeFailure, component, "probe", "ffprobe could not read audio", err)
	}
	if probe.AudioStreamCount() == 0 {
		return empty, services.Wrap(services.ErrDecodeFailure, component, "probe", "no audio stream found", nil)
	}
	duration := probe.DurationSeconds()
	clips := PlanWindows(duration, s.cfg.WindowSeconds, s.cfg.StrideSeconds)

	logger := logging.WithContext(ctx, s.logger)
	logger.Info("local transcription started",
		logging.String("format", string(format)),
		logging.Float64("duration_seconds", duration),
		logging.Int("windows", len(clips)),
		logging.String("model", s.cfg.Model),
		logging.String("language", langpkg.DisplayName(lang)),
	)
	opts.Report(0)

	windows := make([]transcript.Window, 0, len(clips))
	detected := ""
	for i, clip := range clips {
		if err := ctx.Err(); err != nil {
			return empty, services.Classify(component, "transcribe", err)
		}
		window, windowLang, err := s.transcribeWindow(ctx, source, workDir, i, clip, lang)
		if err != nil {
			return empty, err
		}
		if detected == "" {
			detected = windowLang
		}
		windows = append(windows, window)
		logger.Debug("window transcribed",
			logging.Int("window", i),
			logging.Float64("start", clip.Start),
			logging.Int("segments", len(window.Segments)),
		)
		opts.Report(float64(i+1) / float64(len(clips)) * 100)
	}

	merged := transcript.MergeWindows(windows, s.cfg.StrideSeconds)
	if lang == "" {
		lang = langpkg.ToISO2(detected)
	}
	result := transcript.Normalize(transcript.Transcript{Segments: merged, Language: lang, Duration: duration})
	logger.Info("local transcription completed", logging.Int("segments", result.Len()))
	return result, nil
}

func (s *Service) transcribeWindow(ctx context.Context, source, workDir string, index int, clip ffmpeg.Clip, lang string) (transcript.Window, string, error) {
	var window transcript.Window
	dir := filepath.Join(workDir, fmt.Sprintf("window_%03d", index))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return window, "", services.Wrap(services.ErrProviderUnavailable, component, "prepare", "create window dir", err)
	}

	wav := filepath.Join(dir, "audio.wav")
	if err := s.run(ctx, s.cfg.FFmpegBinary, ffmpeg.DecodeArgs(source, wav, s.cfg.SampleRate, clip)...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return window, "", services.Classify(component, "decode", ctxErr)
		}
		return window, "", services.Wrap(services.ErrDecodeFailure, component, "decode", fmt.Sprintf("window %d", index), err)
	}

	if err := s.run(ctx, UVXCommand, s.buildArgs(wav, dir, lang)...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return window, "", services.Classify(component, "whisperx", ctxErr)
		}
		return window, "", services.Wrap(services.ErrProviderUnavailable, component, "whisperx", fmt.Sprintf("window %d", index), err)
	}

	output, err := LoadOutput(filepath.Join(dir, "audio.json"))
	if err != nil {
		return window, "", services.Wrap(services.ErrProviderUnavailable, component, "whisperx", "read output", err)
	}

	window.Start = clip.Start
	if clip.Duration > 0 {
		window.End = clip.Start + clip.Duration
	}
	window.Segments = TranscriptSegments(output.Segments)
	return window, output.Language, nil
}

func (s *Service) inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	if s.probe != nil {
		return s.probe(ctx, path)
	}
	return ffprobe.Inspect(ctx, s.cfg.FFprobeBinary, path)
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	// Force legacy behavior so bundled WhisperX binaries can load checkpoints safely.
	if name == UVXCommand && os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return fmt.Errorf("%s: %w", name, err)
		}
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir, language string) []string {
	args := make([]string, 0, 40)

	// Index URLs
	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.cfg.Model,
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", BeamSize,
		"--best_of", BestOf,
		"--temperature", Temperature,
		"--patience", Patience,
	)

	// VAD method
	vadMethod := s.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	// Language
	if lang := langpkg.ToISO2(language); lang != "" {
		args = append(args, "--language", lang)
	}

	// Device
	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}
