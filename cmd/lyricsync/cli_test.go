package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lyricsync/internal/api"
	"lyricsync/internal/config"
	"lyricsync/internal/daemon"
	"lyricsync/internal/services"
	"lyricsync/internal/testsupport"
	"lyricsync/internal/transcript"
	"lyricsync/internal/transcription"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}

// setupCLIConfig writes cfg to a temp TOML file and isolates HOME.
func setupCLIConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	base := testsupport.BaseDir(cfg)
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)

	data, err := toml.Marshal(*cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func stubProvider(t *testing.T, p transcription.Provider) {
	t.Helper()
	prev := newProvider
	newProvider = func(*config.Config, *slog.Logger) (transcription.Provider, error) {
		return p, nil
	}
	t.Cleanup(func() { newProvider = prev })
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.wav")
	if err := os.WriteFile(path, testsupport.WAV(16000, 1600), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func writeTranscriptFile(t *testing.T, dir string) string {
	t.Helper()
	resp := api.FromTranscript(testsupport.SampleTranscript())
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}
	path := filepath.Join(dir, "song.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return path
}

func TestConfigInitCreatesSample(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	target := filepath.Join(home, "custom", "lyricsync.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(data) != config.SampleConfig() {
		t.Fatal("written file does not match the embedded sample")
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := setupCLIConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "validate"}, path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+path)
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsBadPolicy(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPolicy("queue"))
	path := setupCLIConfig(t, cfg)

	_, _, err := runCLI(t, []string{"config", "validate"}, path)
	if err == nil || !strings.Contains(err.Error(), "player.policy") {
		t.Fatalf("expected player.policy error, got %v", err)
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("hunter2-token"))
	cfg.Remote.APIKey = "sk-secret"
	path := setupCLIConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "show"}, path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "sk-secret") || strings.Contains(out, "hunter2-token") {
		t.Fatalf("secrets leaked:\n%s", out)
	}
	requireContains(t, out, redacted)
	requireContains(t, out, "[transcription]")

	out, _, err = runCLI(t, []string{"config", "show", "--show-secrets"}, path)
	if err != nil {
		t.Fatalf("config show --show-secrets: %v", err)
	}
	requireContains(t, out, "sk-secret")
}

func TestAlignReportsActiveLines(t *testing.T) {
	file := writeTranscriptFile(t, t.TempDir())

	out, _, err := runCLI(t, []string{"align", file, "--at", "5", "--at", "0", "--at=-1"}, "")
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	requireContains(t, out, "world")
	requireContains(t, out, "Hello")
	requireContains(t, out, "0:04.20")
}

func TestAlignJSON(t *testing.T) {
	file := writeTranscriptFile(t, t.TempDir())

	out, _, err := runCLI(t, []string{"align", file, "--at", "12", "--at=-1", "--json"}, "")
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	var results []api.ActiveResponse
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Active == nil || results[0].Active.Text != "again" || results[0].Active.Index != 2 {
		t.Fatalf("unexpected first result: %+v", results[0].Active)
	}
	if results[1].Active != nil {
		t.Fatalf("expected no active line before the first segment, got %+v", results[1].Active)
	}
}

func TestAlignRequiresPosition(t *testing.T) {
	file := writeTranscriptFile(t, t.TempDir())
	if _, _, err := runCLI(t, []string{"align", file}, ""); err == nil {
		t.Fatal("expected error without --at")
	}
}

func TestDepsReportsMissingRequired(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProvider(config.ProviderLocal))
	path := setupCLIConfig(t, cfg)
	t.Setenv("PATH", t.TempDir())

	out, _, err := runCLI(t, []string{"deps"}, path)
	if err == nil {
		t.Fatal("expected error for missing binaries")
	}
	requireContains(t, out, "ffmpeg")
	requireContains(t, out, "uvx")
}

func TestDepsAvailable(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithProvider(config.ProviderLocal),
		testsupport.WithStubbedBinaries(),
	)
	path := setupCLIConfig(t, cfg)

	out, _, err := runCLI(t, []string{"deps", "--json"}, path)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	var statuses []api.DependencyStatus
	if err := json.Unmarshal([]byte(out), &statuses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("expected 3 dependencies, got %d", len(statuses))
	}
	for _, st := range statuses {
		if !st.Available {
			t.Fatalf("expected %s available", st.Name)
		}
	}
}

func TestTokenIssuesValidJWT(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIJWTSecret = "0123456789abcdef-secret"
	path := setupCLIConfig(t, cfg)

	out, _, err := runCLI(t, []string{"token", "--subject", "kitchen", "--ttl", "1h"}, path)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	claims, err := daemon.ValidateToken(cfg.Paths.APIJWTSecret, strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Subject != "kitchen" {
		t.Fatalf("subject = %q", claims.Subject)
	}
}

func TestTokenRequiresSecret(t *testing.T) {
	t.Setenv("LYRICSYNC_JWT_SECRET", "")
	cfg := testsupport.NewConfig(t)
	path := setupCLIConfig(t, cfg)

	if _, _, err := runCLI(t, []string{"token"}, path); err == nil {
		t.Fatal("expected error without jwt secret")
	}
}

func TestTranscribeJSON(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := setupCLIConfig(t, cfg)
	stub := testsupport.NewStubProvider(testsupport.SampleTranscript())
	stubProvider(t, stub)

	audio := writeAudio(t)

	out, _, err := runCLI(t, []string{"transcribe", audio, "--json", "--language", "en", "--track-id", "track-7"}, path)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	var resp api.LyricsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if resp.TrackID != "track-7" || len(resp.Lyrics) != 3 || resp.Lyrics[1].Time != 4.2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got := stub.LastOptions().Language; got != "en" {
		t.Fatalf("language hint = %q", got)
	}
}

func TestTranscribeTableUsesContentID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := setupCLIConfig(t, cfg)
	stubProvider(t, testsupport.NewStubProvider(testsupport.SampleTranscript()))

	audio := writeAudio(t)

	out, _, err := runCLI(t, []string{"transcribe", audio}, path)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	requireContains(t, out, "again")
	requireContains(t, out, "Track sha256-")
	requireContains(t, out, "3 lines")
}

func TestTranscribeFailureShowsUserMessage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := setupCLIConfig(t, cfg)
	stubProvider(t, &testsupport.StubProvider{
		Fn: func(context.Context, transcription.Audio, transcription.Options) (transcript.Transcript, error) {
			return transcript.Transcript{}, services.Wrap(services.ErrQuotaExceeded, "stub", "transcribe", "quota", nil)
		},
	})

	audio := writeAudio(t)

	_, _, err := runCLI(t, []string{"transcribe", audio}, path)
	if err == nil {
		t.Fatal("expected failure")
	}
	requireContains(t, err.Error(), "quota has been reached")
	if services.KindOf(err) != services.KindQuotaExceeded {
		t.Fatalf("kind = %q", services.KindOf(err))
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:      "0:00.00",
		4.2:    "0:04.20",
		65.5:   "1:05.50",
		600:    "10:00.00",
		-1:     "-",
	}
	for in, want := range cases {
		if got := formatTimestamp(in); got != want {
			t.Fatalf("formatTimestamp(%v) = %q, want %q", in, got, want)
		}
	}
}
