package config

const (
	defaultConfigPath           = "~/.config/lyricsync/config.toml"
	projectConfigName           = "lyricsync.toml"
	defaultLogDir               = "~/.local/share/lyricsync/logs"
	defaultWorkDir              = "~/.cache/lyricsync/work"
	defaultStateDir             = "~/.local/state/lyricsync"
	defaultAPIBind              = "127.0.0.1:7490"
	defaultProvider             = ProviderRemote
	defaultTimeoutSeconds       = 300
	defaultMaxUploadMiB         = 25
	defaultRemoteBaseURL        = "https://api.openai.com/v1"
	defaultRemoteModel          = "whisper-1"
	defaultRemoteMaxRetries     = 3
	defaultLocalModel           = "large-v3"
	defaultVADMethod            = "silero"
	defaultWindowSeconds        = 30.0
	defaultStrideSeconds        = 5.0
	defaultSampleRate           = 16000
	defaultPlayerPolicy         = PolicySupersede
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultFilterHallucinations = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:      defaultLogDir,
			WorkDir:     defaultWorkDir,
			StateDir:    defaultStateDir,
			APIBind:     defaultAPIBind,
			CORSOrigins: []string{"*"},
		},
		Transcription: Transcription{
			Provider:             defaultProvider,
			TimeoutSeconds:       defaultTimeoutSeconds,
			FilterHallucinations: defaultFilterHallucinations,
			MaxUploadMiB:         defaultMaxUploadMiB,
		},
		Remote: Remote{
			BaseURL:    defaultRemoteBaseURL,
			Model:      defaultRemoteModel,
			MaxRetries: defaultRemoteMaxRetries,
		},
		Local: Local{
			Model:         defaultLocalModel,
			VADMethod:     defaultVADMethod,
			WindowSeconds: defaultWindowSeconds,
			StrideSeconds: defaultStrideSeconds,
			SampleRate:    defaultSampleRate,
		},
		Player: Player{
			Policy: defaultPlayerPolicy,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
