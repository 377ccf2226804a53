package whisperx

import (
	"encoding/json"
	"fmt"
	"os"

	"lyricsync/internal/transcript"
)

// Word represents a single word with timing from WhisperX output.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// Output is the JSON document WhisperX writes per input file.
type Output struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// LoadOutput loads a WhisperX JSON file.
func LoadOutput(jsonPath string) (Output, error) {
	var payload Output
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return payload, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload, nil
}

// TranscriptSegments converts WhisperX segments, keeping window-relative
// times. Segments whose text is blank after cleanup are dropped.
func TranscriptSegments(segments []Segment) []transcript.Segment {
	out := make([]transcript.Segment, 0, len(segments))
	for _, seg := range segments {
		text := transcript.CleanText(seg.Text)
		if text == "" {
			continue
		}
		out = append(out, transcript.Segment{Start: seg.Start, End: seg.End, Text: text})
	}
	return out
}
