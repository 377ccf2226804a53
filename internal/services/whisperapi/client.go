package whisperapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"lyricsync/internal/language"
	"lyricsync/internal/logging"
	"lyricsync/internal/services"
	"lyricsync/internal/transcript"
	"lyricsync/internal/transcription"
)

const (
	component             = "whisperapi"
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultModel          = "whisper-1"
	defaultMaxUploadBytes = 25 << 20
	defaultHTTPTimeout    = 10 * time.Minute
	defaultRetryMaxDelay  = 20 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 4
)

// SupportedFormats lists the containers the hosted endpoint accepts.
var SupportedFormats = transcription.NewFormatSet("flac", "m4a", "mp3", "mp4", "mpeg", "mpga", "oga", "ogg", "wav", "webm")

// Config captures the runtime settings required to talk to the endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxRetries     int
	MaxUploadBytes int64
}

// Client is the remote transcription provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, component)
	}
}

// NewClient constructs a remote provider using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			MaxRetries:     cfg.MaxRetries,
			MaxUploadBytes: cfg.MaxUploadBytes,
		},
		httpClient:       &http.Client{Timeout: defaultHTTPTimeout},
		logger:           logging.NewComponentLogger(nil, component),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	if cfg.MaxRetries >= 0 {
		client.retryMaxAttempts = cfg.MaxRetries + 1
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	if client.cfg.MaxUploadBytes <= 0 {
		client.cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	return client
}

// Name implements transcription.Provider.
func (c *Client) Name() string {
	return "remote"
}

// Model returns the configured model name for logging.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Transcribe uploads audio and returns the normalized segment list.
func (c *Client) Transcribe(ctx context.Context, audio transcription.Audio, opts transcription.Options) (transcript.Transcript, error) {
	var empty transcript.Transcript
	format, err := transcription.Validate(component, audio, SupportedFormats)
	if err != nil {
		return empty, err
	}
	if int64(len(audio.Data)) > c.cfg.MaxUploadBytes {
		return empty, services.Wrap(services.ErrInvalidInput, component, "validate",
			fmt.Sprintf("audio is %d bytes; limit is %d", len(audio.Data), c.cfg.MaxUploadBytes), nil)
	}
	lang, err := language.Normalize(opts.Language)
	if err != nil {
		return empty, services.Wrap(services.ErrInvalidInput, component, "validate", "unrecognized language hint", err)
	}
	if c.cfg.APIKey == "" {
		return empty, services.Wrap(services.ErrProviderUnavailable, component, "configure", "api key required (set remote.api_key or OPENAI_API_KEY)", nil)
	}

	body, contentType, err := c.buildForm(audio, format, lang)
	if err != nil {
		return empty, services.Wrap(services.ErrProviderUnavailable, component, "encode", "build multipart form", err)
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Info("uploading audio",
		logging.String("format", string(format)),
		logging.Int("bytes", len(audio.Data)),
		logging.String("model", c.cfg.Model),
		logging.String("language", language.DisplayName(lang)),
	)
	opts.Report(0)
	started := time.Now()

	payload, err := c.sendWithRetry(ctx, body, contentType)
	if err != nil {
		return empty, c.classify(err)
	}

	result := transcript.Normalize(payload.toTranscript())
	logger.Info("transcription received",
		logging.Int("segments", result.Len()),
		logging.String("detected_language", result.Language),
		logging.Duration("elapsed", time.Since(started)),
	)
	opts.Report(100)
	return result, nil
}

func (c *Client) buildForm(audio transcription.Audio, format transcription.Format, lang string) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, uploadName(audio.Name, format)))
	header.Set("Content-Type", transcription.MediaTypeOf(format))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"model", c.cfg.Model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "segment"},
	}
	if lang != "" {
		fields = append(fields, [2]string{"language", lang})
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// uploadName guarantees the extension matches the resolved format, since
// the endpoint infers the container from it.
func uploadName(name string, format transcription.Format) string {
	base := strings.TrimSuffix(filepath.Base(strings.TrimSpace(name)), filepath.Ext(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "audio"
	}
	return base + "." + string(format)
}

func (c *Client) sendOnce(ctx context.Context, body []byte, contentType string) (verboseResponse, error) {
	var payload verboseResponse
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "audio", "transcriptions")
	if err != nil {
		return payload, fmt.Errorf("build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return payload, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return payload, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return payload, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return payload, newHTTPStatusError(resp.StatusCode, data, retryAfter)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, &malformedResponseError{err: err, snippet: summarizeSnippet(string(data))}
	}
	return payload, nil
}
