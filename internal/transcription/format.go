package transcription

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"lyricsync/internal/services"
)

// Format is the canonical short name of an audio container, matching the
// file extension speech APIs expect (for example "mp3" or "m4a").
type Format string

// FormatSet lists the formats a provider accepts.
type FormatSet map[Format]struct{}

// NewFormatSet builds a FormatSet.
func NewFormatSet(formats ...Format) FormatSet {
	set := make(FormatSet, len(formats))
	for _, f := range formats {
		set[f] = struct{}{}
	}
	return set
}

// Contains reports whether f is accepted.
func (s FormatSet) Contains(f Format) bool {
	_, ok := s[f]
	return ok
}

var formatsByMediaType = map[string]Format{
	"audio/mpeg":      "mp3",
	"audio/mp3":       "mp3",
	"audio/mpga":      "mpga",
	"audio/mp4":       "m4a",
	"audio/m4a":       "m4a",
	"audio/x-m4a":     "m4a",
	"video/mp4":       "mp4",
	"video/mpeg":      "mpeg",
	"audio/wav":       "wav",
	"audio/wave":      "wav",
	"audio/x-wav":     "wav",
	"audio/vnd.wave":  "wav",
	"audio/webm":      "webm",
	"video/webm":      "webm",
	"audio/ogg":       "ogg",
	"application/ogg": "ogg",
	"audio/flac":      "flac",
	"audio/x-flac":    "flac",
	"audio/aac":       "aac",
	"audio/opus":      "opus",
	"audio/aiff":      "aiff",
	"audio/x-aiff":    "aiff",
	"audio/x-ms-wma":  "wma",
}

var formatsByExtension = map[string]Format{
	".mp3":  "mp3",
	".mpga": "mpga",
	".mpeg": "mpeg",
	".m4a":  "m4a",
	".mp4":  "mp4",
	".wav":  "wav",
	".webm": "webm",
	".ogg":  "ogg",
	".oga":  "oga",
	".flac": "flac",
	".aac":  "aac",
	".opus": "opus",
	".aif":  "aiff",
	".aiff": "aiff",
	".wma":  "wma",
}

// ResolveFormat determines the container format of audio. The declared media
// type wins when it is specific; otherwise the file extension is used, then
// the leading bytes are sniffed. It returns "" when nothing matches.
func ResolveFormat(audio Audio) Format {
	if f, ok := formatsByMediaType[baseMediaType(audio.MediaType)]; ok {
		return f
	}
	if f, ok := formatsByExtension[strings.ToLower(filepath.Ext(audio.Name))]; ok {
		return f
	}
	if len(audio.Data) > 0 {
		if f, ok := formatsByMediaType[baseMediaType(http.DetectContentType(audio.Data))]; ok {
			return f
		}
	}
	return ""
}

// MediaTypeOf returns the MIME type used when uploading f.
func MediaTypeOf(f Format) string {
	switch f {
	case "mp3", "mpga", "mpeg":
		return "audio/mpeg"
	case "m4a":
		return "audio/mp4"
	case "mp4":
		return "video/mp4"
	case "wav":
		return "audio/wav"
	case "webm":
		return "audio/webm"
	case "ogg", "oga", "opus":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	case "aac":
		return "audio/aac"
	case "aiff":
		return "audio/aiff"
	default:
		return "application/octet-stream"
	}
}

// Validate checks that audio is non-empty and in a supported format and
// returns the resolved format.
func Validate(component string, audio Audio, supported FormatSet) (Format, error) {
	if len(audio.Data) == 0 {
		return "", services.Wrap(services.ErrInvalidInput, component, "validate", "audio payload is empty", nil)
	}
	format := ResolveFormat(audio)
	if format == "" {
		return "", services.Wrap(services.ErrUnsupportedMedia, component, "validate", "unrecognized audio format", nil)
	}
	if !supported.Contains(format) {
		return "", services.Wrap(services.ErrUnsupportedMedia, component, "validate", "format "+string(format)+" is not supported", nil)
	}
	return format, nil
}

func baseMediaType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(value)
	}
	return parsed
}
