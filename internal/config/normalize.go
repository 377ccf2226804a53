package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeRemote()
	c.normalizeLocal()
	c.Player.Policy = strings.ToLower(strings.TrimSpace(c.Player.Policy))
	if c.Player.Policy == "" {
		c.Player.Policy = defaultPlayerPolicy
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		c.Paths.APIToken = envValue("LYRICSYNC_API_TOKEN")
	}
	c.Paths.APIJWTSecret = strings.TrimSpace(c.Paths.APIJWTSecret)
	if c.Paths.APIJWTSecret == "" {
		c.Paths.APIJWTSecret = envValue("LYRICSYNC_JWT_SECRET")
	}
	origins := make([]string, 0, len(c.Paths.CORSOrigins))
	seen := make(map[string]struct{}, len(c.Paths.CORSOrigins))
	for _, origin := range c.Paths.CORSOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	c.Paths.CORSOrigins = origins
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = defaultProvider
	}
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	if c.Transcription.TimeoutSeconds == 0 {
		c.Transcription.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Transcription.MaxUploadMiB == 0 {
		c.Transcription.MaxUploadMiB = defaultMaxUploadMiB
	}
}

func (c *Config) normalizeRemote() {
	c.Remote.APIKey = strings.TrimSpace(c.Remote.APIKey)
	if c.Remote.APIKey == "" {
		c.Remote.APIKey = envValue("OPENAI_API_KEY")
	}
	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	if c.Remote.BaseURL == "" {
		c.Remote.BaseURL = defaultRemoteBaseURL
	}
	c.Remote.Model = strings.TrimSpace(c.Remote.Model)
	if c.Remote.Model == "" {
		c.Remote.Model = defaultRemoteModel
	}
	if c.Remote.MaxRetries < 0 {
		c.Remote.MaxRetries = 0
	}
}

func (c *Config) normalizeLocal() {
	c.Local.Model = strings.TrimSpace(c.Local.Model)
	if c.Local.Model == "" {
		c.Local.Model = defaultLocalModel
	}
	c.Local.VADMethod = strings.ToLower(strings.TrimSpace(c.Local.VADMethod))
	if c.Local.VADMethod == "" {
		c.Local.VADMethod = defaultVADMethod
	}
	c.Local.HFToken = strings.TrimSpace(c.Local.HFToken)
	if c.Local.HFToken == "" {
		if value := envValue("HUGGING_FACE_HUB_TOKEN"); value != "" {
			c.Local.HFToken = value
		} else {
			c.Local.HFToken = envValue("HF_TOKEN")
		}
	}
	if c.Local.WindowSeconds == 0 {
		c.Local.WindowSeconds = defaultWindowSeconds
	}
	if c.Local.SampleRate == 0 {
		c.Local.SampleRate = defaultSampleRate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envValue(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
