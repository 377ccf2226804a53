package transcript

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Segment is a single timestamped unit of recognized text. End is optional
// and zero when the provider does not report it.
type Segment struct {
	Start float64 `json:"time"`
	End   float64 `json:"end,omitempty"`
	Text  string  `json:"text"`
}

// Transcript is the ordered sequence of segments for one audio source.
type Transcript struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language,omitempty"`
	// Duration is the source length in seconds when known.
	Duration float64 `json:"duration,omitempty"`
}

// Len returns the number of segments.
func (t Transcript) Len() int {
	return len(t.Segments)
}

// Empty reports whether the transcript has no segments.
func (t Transcript) Empty() bool {
	return len(t.Segments) == 0
}

// Clone returns a deep copy so callers can hand out transcripts without
// sharing the backing array.
func (t Transcript) Clone() Transcript {
	out := t
	if t.Segments != nil {
		out.Segments = append([]Segment(nil), t.Segments...)
	}
	return out
}

// effectiveEnd treats an unreported or inverted end as a zero-length segment.
func (s Segment) effectiveEnd() float64 {
	if s.End < s.Start {
		return s.Start
	}
	return s.End
}

// Normalize returns a new Transcript satisfying the model invariants. The
// input is not modified.
func Normalize(raw Transcript) Transcript {
	out := Transcript{
		Language: strings.TrimSpace(raw.Language),
		Duration: raw.Duration,
	}
	if math.IsNaN(out.Duration) || out.Duration < 0 {
		out.Duration = 0
	}
	segments := make([]Segment, 0, len(raw.Segments))
	for _, seg := range raw.Segments {
		text := CleanText(seg.Text)
		if text == "" {
			continue
		}
		if math.IsNaN(seg.Start) || math.IsInf(seg.Start, 0) {
			continue
		}
		start := seg.Start
		if start < 0 {
			start = 0
		}
		end := seg.End
		if math.IsNaN(end) || math.IsInf(end, 0) || end < start {
			end = 0
		}
		segments = append(segments, Segment{Start: start, End: end, Text: text})
	}
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
	out.Segments = segments
	return out
}

// CleanText trims surrounding whitespace, collapses internal whitespace runs,
// and applies Unicode NFC so equal lyrics compare equal.
func CleanText(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return norm.NFC.String(strings.Join(fields, " "))
}

// Offset shifts every segment by seconds. Used to move per-window results
// onto the global timeline.
func Offset(segments []Segment, seconds float64) []Segment {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		seg.Start += seconds
		if seg.End > 0 {
			seg.End += seconds
		}
		out[i] = seg
	}
	return out
}
