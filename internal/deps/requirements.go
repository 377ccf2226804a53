package deps

import (
	"lyricsync/internal/config"
	"lyricsync/internal/services/whisperx"
)

// Requirements lists the external binaries the configured provider needs.
// ffmpeg and ffprobe are only optional under the remote provider, where
// they serve diagnostics.
func Requirements(cfg *config.Config) []Requirement {
	local := cfg != nil && cfg.Transcription.Provider == config.ProviderLocal
	ffmpegBinary, ffprobeBinary := "ffmpeg", "ffprobe"
	if cfg != nil {
		ffmpegBinary, ffprobeBinary = cfg.FFmpegBinary(), cfg.FFprobeBinary()
	}
	reqs := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			Description: "Decodes and cuts audio windows for local transcription",
			Optional:    !local,
		},
		{
			Name:        "FFprobe",
			Command:     ffprobeBinary,
			Description: "Probes audio duration and streams",
			Optional:    !local,
		},
	}
	if local {
		reqs = append(reqs, Requirement{
			Name:        "uvx",
			Command:     whisperx.UVXCommand,
			Description: "Launches WhisperX for local transcription",
		})
	}
	return reqs
}

// MissingRequired returns the required dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
