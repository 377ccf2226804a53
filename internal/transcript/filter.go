package transcript

import (
	"strings"
	"unicode"
)

// Removal records a segment dropped by FilterHallucinations.
type Removal struct {
	Segment Segment
	Reason  string // "isolated_phrase", "repeated_phrase", "music_symbols"
}

const (
	isolationGapSeconds = 30.0
	repeatGapSeconds    = 10.0
	repeatRunLength     = 3
)

// Filler phrases (normalized form) speech models emit over silence or
// instrumental passages.
var fillerPhrases = map[string]bool{
	"thank you":              true,
	"thank you for watching": true,
	"thanks for watching":    true,
	"thanks for listening":   true,
	"please subscribe":       true,
	"like and subscribe":     true,
	"subtitles by amaraorg":  true,
	"well be right back":     true,
	"bye":                    true,
	"bye bye":                true,
	"see you next time":      true,
}

// FilterHallucinations removes filler phrases that appear in isolation or in
// widely spaced runs, and segments consisting only of music notation.
// Segments must already be sorted by start. Phrases inside sung passages are
// kept; isolation requires a quiet gap on both sides.
func FilterHallucinations(segments []Segment) ([]Segment, []Removal) {
	if len(segments) == 0 {
		return segments, nil
	}
	remove := make([]bool, len(segments))
	var removals []Removal

	markRepeated(segments, remove, &removals)

	for i, seg := range segments {
		if remove[i] {
			continue
		}
		if isMusicOnly(seg.Text) {
			remove[i] = true
			removals = append(removals, Removal{Segment: seg, Reason: "music_symbols"})
			continue
		}
		isolated := gapBefore(segments, i) >= isolationGapSeconds && gapAfter(segments, i) >= isolationGapSeconds
		if isolated && fillerPhrases[phraseKey(seg.Text)] {
			remove[i] = true
			removals = append(removals, Removal{Segment: seg, Reason: "isolated_phrase"})
		}
	}

	if len(removals) == 0 {
		return segments, nil
	}
	kept := make([]Segment, 0, len(segments)-len(removals))
	for i, seg := range segments {
		if !remove[i] {
			kept = append(kept, seg)
		}
	}
	return kept, removals
}

// markRepeated flags runs of an identical filler phrase where every gap
// inside the run exceeds repeatGapSeconds. Repeated lyric lines are never a
// run, however far apart they are sung.
func markRepeated(segments []Segment, remove []bool, removals *[]Removal) {
	i := 0
	for i < len(segments) {
		key := phraseKey(segments[i].Text)
		if !fillerPhrases[key] {
			i++
			continue
		}
		end := i + 1
		for end < len(segments) {
			if phraseKey(segments[end].Text) != key {
				break
			}
			if segments[end].Start-segments[end-1].effectiveEnd() <= repeatGapSeconds {
				break
			}
			end++
		}
		if end-i >= repeatRunLength {
			for j := i; j < end; j++ {
				remove[j] = true
				*removals = append(*removals, Removal{Segment: segments[j], Reason: "repeated_phrase"})
			}
		}
		i = end
	}
}

func gapBefore(segments []Segment, i int) float64 {
	if i == 0 {
		return segments[i].Start
	}
	return segments[i].Start - segments[i-1].effectiveEnd()
}

func gapAfter(segments []Segment, i int) float64 {
	if i >= len(segments)-1 {
		return isolationGapSeconds
	}
	return segments[i+1].Start - segments[i].effectiveEnd()
}

func isMusicOnly(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, r := range text {
		switch {
		case r == '¶', r == '♪', r == '♫', r == '♬', r == '*':
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return true
}

// phraseKey lowercases and strips punctuation so "Thank you." and
// "thank you" compare equal.
func phraseKey(text string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}
