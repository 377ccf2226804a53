package whisperapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lyricsync/internal/logging"
	"lyricsync/internal/services"
	"lyricsync/internal/transcription"
)

func mp3Audio() transcription.Audio {
	return transcription.Audio{Name: "song.mp3", MediaType: "audio/mpeg", Data: []byte("ID3\x03fake-mp3-bytes")}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestTranscribeSendsVerboseJSONRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		checks := map[string]string{
			"model":                     "whisper-1",
			"response_format":           "verbose_json",
			"timestamp_granularities[]": "segment",
			"language":                  "fr",
		}
		for key, want := range checks {
			if got := r.FormValue(key); got != want {
				t.Errorf("form %s = %q, want %q", key, got, want)
			}
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "song.mp3" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != string(mp3Audio().Data) {
			t.Errorf("upload body mismatch")
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"text":     "Hello world again",
			"language": "french",
			"duration": 12.5,
			"segments": []map[string]any{
				{"id": 2, "start": 9.8, "end": 12.0, "text": " again "},
				{"id": 0, "start": 0.0, "end": 4.0, "text": " Hello"},
				{"id": 1, "start": 4.2, "end": 9.0, "text": "world "},
				{"id": 3, "start": 11.0, "end": 11.5, "text": "   "},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL + "/v1"}, WithLogger(logging.NewNop()))
	var progress []float64
	got, err := client.Transcribe(context.Background(), mp3Audio(), transcription.Options{
		Language: "fr-FR",
		Progress: func(p float64) { progress = append(progress, p) },
	})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}

	want := []string{"Hello", "world", "again"}
	if got.Len() != len(want) {
		t.Fatalf("expected %d segments, got %+v", len(want), got.Segments)
	}
	for i, text := range want {
		if got.Segments[i].Text != text {
			t.Fatalf("segment %d = %q, want %q", i, got.Segments[i].Text, text)
		}
	}
	if got.Segments[1].Start != 4.2 {
		t.Fatalf("expected unrounded start 4.2, got %v", got.Segments[1].Start)
	}
	if got.Language != "fr" || got.Duration != 12.5 {
		t.Fatalf("unexpected metadata %q %v", got.Language, got.Duration)
	}
	if len(progress) != 2 || progress[0] != 0 || progress[1] != 100 {
		t.Fatalf("unexpected progress %v", progress)
	}
}

func TestTranscribeRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "2")
			writeJSON(t, w, http.StatusServiceUnavailable, map[string]any{"error": map[string]any{"message": "overloaded"}})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"segments": []map[string]any{{"start": 1, "text": "ok"}}})
	}))
	defer server.Close()

	var delays []time.Duration
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, MaxRetries: 3},
		WithSleeper(func(d time.Duration) { delays = append(delays, d) }))

	got, err := client.Transcribe(context.Background(), mp3Audio(), transcription.Options{})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("unexpected segments %+v", got.Segments)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
	if len(delays) != 2 || delays[0] != 2*time.Second {
		t.Fatalf("expected Retry-After delays, got %v", delays)
	}
}

func TestTranscribeInsufficientQuotaDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusTooManyRequests, map[string]any{"error": map[string]any{
			"message": "You exceeded your current quota",
			"type":    "insufficient_quota",
			"code":    "insufficient_quota",
		}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, MaxRetries: 3}, WithSleeper(func(time.Duration) {}))
	_, err := client.Transcribe(context.Background(), mp3Audio(), transcription.Options{})
	if !errors.Is(err, services.ErrQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestTranscribeRateLimitExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "slow down", "code": "rate_limit_exceeded"}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, MaxRetries: 2}, WithSleeper(func(time.Duration) {}))
	_, err := client.Transcribe(context.Background(), mp3Audio(), transcription.Options{})
	if services.KindOf(err) != services.KindQuotaExceeded {
		t.Fatalf("expected QuotaExceeded, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestTranscribeClassifiesStatusCodes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    services.Kind
	}{
		{"undecodable", http.StatusBadRequest, "Audio file could not be decoded or its format is not supported.", services.KindDecodeFailure},
		{"bad format", http.StatusBadRequest, "Invalid file format. Supported formats: ['flac', 'mp3']", services.KindUnsupportedMedia},
		{"unauthorized", http.StatusUnauthorized, "Incorrect API key provided", services.KindProviderUnavailable},
		{"too large", http.StatusRequestEntityTooLarge, "Maximum content size limit exceeded", services.KindInvalidInput},
		{"server error", http.StatusInternalServerError, "internal", services.KindProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, map[string]any{"error": map[string]any{"message": tt.message}})
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
			_, err := client.Transcribe(context.Background(), mp3Audio(), transcription.Options{})
			if got := services.KindOf(err); got != tt.want {
				t.Fatalf("KindOf = %s, want %s (err=%v)", got, tt.want, err)
			}
		})
	}
}

func TestTranscribeValidatesBeforeCalling(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	tests := []struct {
		name   string
		cfg    Config
		audio  transcription.Audio
		opts   transcription.Options
		marker error
	}{
		{"empty payload", Config{APIKey: "k"}, transcription.Audio{Name: "a.mp3"}, transcription.Options{}, services.ErrInvalidInput},
		{"unsupported", Config{APIKey: "k"}, transcription.Audio{Name: "a.aiff", Data: []byte{1}}, transcription.Options{}, services.ErrUnsupportedMedia},
		{"oversize", Config{APIKey: "k", MaxUploadBytes: 4}, mp3Audio(), transcription.Options{}, services.ErrInvalidInput},
		{"bad language", Config{APIKey: "k"}, mp3Audio(), transcription.Options{Language: "klingon!!"}, services.ErrInvalidInput},
		{"missing key", Config{}, mp3Audio(), transcription.Options{}, services.ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.BaseURL = server.URL
			client := NewClient(tt.cfg)
			_, err := client.Transcribe(context.Background(), tt.audio, tt.opts)
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
		})
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no HTTP calls, got %d", calls.Load())
	}
}

func TestTranscribeDeadlineIsProviderUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, MaxRetries: 3})
	_, err := client.Transcribe(ctx, mp3Audio(), transcription.Options{})
	if services.KindOf(err) != services.KindProviderUnavailable {
		t.Fatalf("expected ProviderUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline in chain, got %v", err)
	}
}

func TestTranscribeMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>proxy error</html>"))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.Transcribe(context.Background(), mp3Audio(), transcription.Options{})
	if !errors.Is(err, services.ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
}

func TestBackoffDelayCaps(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := client.backoffDelay(i + 1); got != expected {
			t.Fatalf("attempt %d: delay %v, want %v", i+1, got, expected)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected seconds parse %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("expected negative seconds rejected")
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if d, ok := parseRetryAfter(future); !ok || d <= 0 {
		t.Fatalf("unexpected date parse %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("expected garbage rejected")
	}
}

func TestUploadNameMatchesFormat(t *testing.T) {
	if got := uploadName("My Song.MP3", "mp3"); got != "My Song.mp3" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := uploadName("", "wav"); got != "audio.wav" {
		t.Fatalf("unexpected name %q", got)
	}
}
