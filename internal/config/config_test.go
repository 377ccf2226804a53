package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"lyricsync/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndUsesEnvKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "lyricsync", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Remote.APIKey != "env-key" {
		t.Fatalf("expected remote key from env, got %q", cfg.Remote.APIKey)
	}
	if cfg.Transcription.Provider != config.ProviderRemote {
		t.Fatalf("unexpected provider %q", cfg.Transcription.Provider)
	}
	if cfg.TranscriptionTimeout() != 300*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.TranscriptionTimeout())
	}
	if cfg.Local.WindowSeconds != 30 || cfg.Local.StrideSeconds != 5 || cfg.Local.SampleRate != 16000 {
		t.Fatalf("unexpected local windowing defaults: %+v", cfg.Local)
	}
	if cfg.Player.Policy != config.PolicySupersede {
		t.Fatalf("unexpected player policy %q", cfg.Player.Policy)
	}
	if !cfg.Transcription.FilterHallucinations {
		t.Fatal("expected hallucination filter enabled by default")
	}
	if cfg.MaxUploadBytes() != 25<<20 {
		t.Fatalf("unexpected upload limit %d", cfg.MaxUploadBytes())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.WorkDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lyricsync.toml")

	type payload struct {
		Transcription struct {
			Provider             string `toml:"provider"`
			TimeoutSeconds       int    `toml:"timeout_seconds"`
			FilterHallucinations bool   `toml:"filter_hallucinations"`
		} `toml:"transcription"`
		Local struct {
			WindowSeconds float64 `toml:"window_seconds"`
			StrideSeconds float64 `toml:"stride_seconds"`
		} `toml:"local"`
		Player struct {
			Policy string `toml:"policy"`
		} `toml:"player"`
		Remote struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"remote"`
	}
	custom := payload{}
	custom.Transcription.Provider = "LOCAL"
	custom.Transcription.TimeoutSeconds = 60
	custom.Local.WindowSeconds = 20
	custom.Local.StrideSeconds = 2
	custom.Player.Policy = "Reject"
	custom.Remote.APIKey = "file-key"
	custom.Remote.BaseURL = "https://example.com/v1/"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.Transcription.Provider != config.ProviderLocal {
		t.Fatalf("expected provider normalized to local, got %q", cfg.Transcription.Provider)
	}
	if cfg.Transcription.FilterHallucinations {
		t.Fatal("expected explicit false to disable hallucination filter")
	}
	if cfg.Player.Policy != config.PolicyReject {
		t.Fatalf("expected reject policy, got %q", cfg.Player.Policy)
	}
	if cfg.Remote.APIKey != "file-key" {
		t.Fatalf("expected file key to win over env, got %q", cfg.Remote.APIKey)
	}
	if cfg.Remote.BaseURL != "https://example.com/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Remote.BaseURL)
	}
	if cfg.Local.WindowSeconds != 20 || cfg.Local.StrideSeconds != 2 {
		t.Fatalf("unexpected windowing %+v", cfg.Local)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"provider", func(c *config.Config) { c.Transcription.Provider = "cloud" }, "transcription.provider"},
		{"timeout", func(c *config.Config) { c.Transcription.TimeoutSeconds = -1 }, "timeout_seconds"},
		{"stride", func(c *config.Config) { c.Local.StrideSeconds = 30 }, "stride_seconds"},
		{"window", func(c *config.Config) { c.Local.WindowSeconds = -5 }, "window_seconds"},
		{"sample rate", func(c *config.Config) { c.Local.SampleRate = 100 }, "sample_rate"},
		{"policy", func(c *config.Config) { c.Player.Policy = "queue" }, "player.policy"},
		{"vad", func(c *config.Config) { c.Local.VADMethod = "webrtc" }, "vad_method"},
		{"language", func(c *config.Config) { c.Transcription.Language = "not a language" }, "transcription.language"},
		{"bind", func(c *config.Config) { c.Paths.APIBind = "nope" }, "api_bind"},
		{"jwt", func(c *config.Config) { c.Paths.APIJWTSecret = "short" }, "api_jwt_secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Transcription.Provider != config.ProviderRemote {
		t.Fatalf("unexpected provider %q", cfg.Transcription.Provider)
	}
}
