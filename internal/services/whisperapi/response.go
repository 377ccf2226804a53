package whisperapi

import (
	"strings"

	"lyricsync/internal/language"
	"lyricsync/internal/transcript"
)

// verboseResponse is the verbose_json body of /audio/transcriptions.
type verboseResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []verboseSegment `json:"segments"`
}

type verboseSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func (r verboseResponse) toTranscript() transcript.Transcript {
	segments := make([]transcript.Segment, 0, len(r.Segments))
	for _, seg := range r.Segments {
		segments = append(segments, transcript.Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	return transcript.Transcript{
		Segments: segments,
		Language: detectedLanguage(r.Language),
		Duration: r.Duration,
	}
}

// detectedLanguage maps the endpoint's language name ("english") to a code,
// keeping the raw value when it is not recognized.
func detectedLanguage(value string) string {
	if code := language.ToISO2(value); code != "" {
		return code
	}
	return strings.TrimSpace(value)
}
