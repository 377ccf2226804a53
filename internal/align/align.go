package align

import (
	"math"
	"sort"

	"lyricsync/internal/transcript"
)

// Active is the segment that should be highlighted at a given clock value.
type Active struct {
	Index   int
	Segment transcript.Segment
}

// ActiveAt returns the rightmost segment whose start is <= current. When
// several segments share that start the last one wins. The result is absent
// for an empty transcript, a NaN clock, or a clock before the first segment.
func ActiveAt(t transcript.Transcript, current float64) (Active, bool) {
	segments := t.Segments
	if len(segments) == 0 || math.IsNaN(current) {
		return Active{}, false
	}
	// First index whose start is strictly after current.
	idx := sort.Search(len(segments), func(i int) bool {
		return segments[i].Start > current
	})
	if idx == 0 {
		return Active{}, false
	}
	return Active{Index: idx - 1, Segment: segments[idx-1]}, true
}
