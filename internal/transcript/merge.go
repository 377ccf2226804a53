package transcript

import "math"

// Window is the result of transcribing one slice of a longer source. Start
// and End locate the slice in the global timeline (End is zero when
// unknown); segment times are relative to Start.
type Window struct {
	Start    float64
	End      float64
	Segments []Segment
}

// MergeWindows places every window's segments on the global timeline and
// drops duplicates produced by window overlap. A segment from a later window
// that starts inside audio an earlier window already covered is discarded
// when it overlaps a segment kept from that earlier window, either because
// their time ranges intersect or because their starts fall within tolerance
// of each other. The first occurrence of a time region wins.
//
// Segment text is cleaned first and blank segments are dropped, so they never
// claim a time region. Windows must be supplied in timeline order.
func MergeWindows(windows []Window, tolerance float64) []Segment {
	if tolerance < 0 || math.IsNaN(tolerance) {
		tolerance = 0
	}
	var (
		kept       []Segment
		keptWindow []int
		covered    float64
	)
	for wi, window := range windows {
		for _, seg := range Offset(window.Segments, window.Start) {
			seg.Text = CleanText(seg.Text)
			if seg.Text == "" {
				continue
			}
			if wi > 0 && seg.Start < covered && duplicatesEarlier(kept, keptWindow, wi, seg, tolerance) {
				continue
			}
			kept = append(kept, seg)
			keptWindow = append(keptWindow, wi)
		}
		switch {
		case window.End <= 0:
			covered = math.Inf(1)
		case window.End > covered:
			covered = window.End
		}
	}
	return kept
}

func duplicatesEarlier(kept []Segment, keptWindow []int, window int, candidate Segment, tolerance float64) bool {
	for i := len(kept) - 1; i >= 0; i-- {
		if keptWindow[i] == window {
			continue
		}
		prior := kept[i]
		if math.Abs(prior.Start-candidate.Start) <= tolerance {
			return true
		}
		if rangesOverlap(prior, candidate) {
			return true
		}
	}
	return false
}

func rangesOverlap(a, b Segment) bool {
	aEnd, bEnd := a.effectiveEnd(), b.effectiveEnd()
	if aEnd == a.Start || bEnd == b.Start {
		return false
	}
	return a.Start < bEnd && b.Start < aEnd
}
