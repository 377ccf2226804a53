package align

import (
	"math"
	"testing"

	"lyricsync/internal/transcript"
)

func sample() transcript.Transcript {
	return transcript.Transcript{Segments: []transcript.Segment{
		{Start: 0.0, Text: "Hello"},
		{Start: 4.2, Text: "world"},
		{Start: 9.8, Text: "again"},
	}}
}

func TestActiveAtWorkedExample(t *testing.T) {
	tests := []struct {
		name    string
		clock   float64
		wantOK  bool
		wantIdx int
		want    string
	}{
		{name: "middle", clock: 5.0, wantOK: true, wantIdx: 1, want: "world"},
		{name: "start", clock: 0, wantOK: true, wantIdx: 0, want: "Hello"},
		{name: "exact boundary", clock: 4.2, wantOK: true, wantIdx: 1, want: "world"},
		{name: "past end", clock: 100, wantOK: true, wantIdx: 2, want: "again"},
		{name: "before first", clock: -1, wantOK: false},
		{name: "nan", clock: math.NaN(), wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ActiveAt(sample(), tt.clock)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Index != tt.wantIdx || got.Segment.Text != tt.want {
				t.Fatalf("got %+v, want index %d %q", got, tt.wantIdx, tt.want)
			}
		})
	}
}

func TestActiveAtEmptyTranscript(t *testing.T) {
	if _, ok := ActiveAt(transcript.Transcript{}, 3); ok {
		t.Fatal("expected absent for empty transcript")
	}
}

func TestActiveAtTiesPickLast(t *testing.T) {
	tr := transcript.Transcript{Segments: []transcript.Segment{
		{Start: 1, Text: "a"},
		{Start: 2, Text: "b"},
		{Start: 2, Text: "c"},
		{Start: 3, Text: "d"},
	}}
	got, ok := ActiveAt(tr, 2.5)
	if !ok || got.Segment.Text != "c" || got.Index != 2 {
		t.Fatalf("expected last of tied segments, got %+v ok=%v", got, ok)
	}
}

func TestActiveAtIsRightmostNotAfter(t *testing.T) {
	tr := sample()
	for c := -2.0; c < 15; c += 0.1 {
		got, ok := ActiveAt(tr, c)
		// Brute-force reference: last index with start <= c.
		want := -1
		for i, seg := range tr.Segments {
			if seg.Start <= c {
				want = i
			}
		}
		if want < 0 {
			if ok {
				t.Fatalf("clock %v: expected absent, got %+v", c, got)
			}
			continue
		}
		if !ok || got.Index != want {
			t.Fatalf("clock %v: expected index %d, got %+v ok=%v", c, want, got, ok)
		}
	}
}

func TestActiveAtIdempotent(t *testing.T) {
	tr := sample()
	first, ok1 := ActiveAt(tr, 5)
	second, ok2 := ActiveAt(tr, 5)
	if first != second || ok1 != ok2 {
		t.Fatalf("repeated lookup differed: %+v vs %+v", first, second)
	}
	if tr.Segments[1].Text != "world" {
		t.Fatal("lookup mutated transcript")
	}
}

func TestActiveAtMonotonicSweep(t *testing.T) {
	tr := sample()
	last := -1
	for c := 0.0; c <= 20; c += 0.25 {
		got, ok := ActiveAt(tr, c)
		if !ok {
			t.Fatalf("clock %v: expected active line", c)
		}
		if got.Index < last {
			t.Fatalf("clock %v: index went backwards from %d to %d", c, last, got.Index)
		}
		last = got.Index
	}
}
