package config

import (
	"errors"
	"fmt"
	"math"
	"net"

	"lyricsync/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateLocal(); err != nil {
		return err
	}
	if err := c.validatePlayer(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Provider {
	case ProviderRemote, ProviderLocal:
	default:
		return fmt.Errorf("transcription.provider must be %q or %q, got %q", ProviderRemote, ProviderLocal, c.Transcription.Provider)
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		return errors.New("transcription.timeout_seconds must be positive")
	}
	if c.Transcription.MaxUploadMiB <= 0 {
		return errors.New("transcription.max_upload_mib must be positive")
	}
	if _, err := language.Normalize(c.Transcription.Language); err != nil {
		return fmt.Errorf("transcription.language: %w", err)
	}
	return nil
}

func (c *Config) validateRemote() error {
	if c.Remote.MaxRetries > 10 {
		return errors.New("remote.max_retries must be <= 10")
	}
	return nil
}

func (c *Config) validateLocal() error {
	cfg := c.Local
	switch cfg.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("local.vad_method must be silero or pyannote, got %q", cfg.VADMethod)
	}
	if !isFinite(cfg.WindowSeconds) || cfg.WindowSeconds <= 0 {
		return errors.New("local.window_seconds must be positive")
	}
	if !isFinite(cfg.StrideSeconds) || cfg.StrideSeconds < 0 {
		return errors.New("local.stride_seconds must be >= 0")
	}
	if cfg.StrideSeconds >= cfg.WindowSeconds {
		return errors.New("local.stride_seconds must be less than local.window_seconds")
	}
	if cfg.SampleRate < 8000 || cfg.SampleRate > 48000 {
		return errors.New("local.sample_rate must be between 8000 and 48000")
	}
	return nil
}

func (c *Config) validatePlayer() error {
	switch c.Player.Policy {
	case PolicySupersede, PolicyReject:
		return nil
	default:
		return fmt.Errorf("player.policy must be %q or %q, got %q", PolicySupersede, PolicyReject, c.Player.Policy)
	}
}

func (c *Config) validatePaths() error {
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %w", err)
	}
	if c.Paths.APIJWTSecret != "" && len(c.Paths.APIJWTSecret) < 16 {
		return errors.New("paths.api_jwt_secret must be at least 16 characters")
	}
	return nil
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
