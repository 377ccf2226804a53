package transcript

import "testing"

func TestFilterHallucinationsIsolatedPhrase(t *testing.T) {
	segments := []Segment{
		{Start: 10, End: 12, Text: "Hello there"},
		{Start: 14, End: 16, Text: "General Kenobi"},
		{Start: 80, End: 82, Text: "Thank you."},
		{Start: 150, End: 152, Text: "Let's go"},
	}

	kept, removals := FilterHallucinations(segments)

	if len(removals) != 1 || removals[0].Reason != "isolated_phrase" {
		t.Fatalf("expected one isolated_phrase removal, got %+v", removals)
	}
	if len(kept) != 3 {
		t.Fatalf("expected 3 kept, got %d", len(kept))
	}
}

func TestFilterHallucinationsKeepsSungPhrase(t *testing.T) {
	segments := []Segment{
		{Start: 10, End: 12, Text: "I just want to say"},
		{Start: 13, End: 15, Text: "Thank you"},
		{Start: 16, End: 18, Text: "for everything"},
	}

	kept, removals := FilterHallucinations(segments)

	if len(removals) != 0 || len(kept) != 3 {
		t.Fatalf("expected nothing removed, got %+v", removals)
	}
}

func TestFilterHallucinationsRepeatedFiller(t *testing.T) {
	segments := []Segment{
		{Start: 10, End: 12, Text: "Real words"},
		{Start: 25, End: 27, Text: "Thank you."},
		{Start: 40, End: 42, Text: "Thank you."},
		{Start: 55, End: 57, Text: "thank you"},
	}

	kept, removals := FilterHallucinations(segments)

	if len(removals) != 3 {
		t.Fatalf("expected 3 removals, got %+v", removals)
	}
	for _, r := range removals {
		if r.Reason != "repeated_phrase" {
			t.Errorf("unexpected reason %q", r.Reason)
		}
	}
	if len(kept) != 1 || kept[0].Text != "Real words" {
		t.Fatalf("unexpected kept %+v", kept)
	}
}

func TestFilterHallucinationsRepeatedLyricSurvives(t *testing.T) {
	segments := []Segment{
		{Start: 10, End: 12, Text: "Hey"},
		{Start: 25, End: 27, Text: "Hey"},
		{Start: 40, End: 42, Text: "Hey"},
	}

	if _, removals := FilterHallucinations(segments); len(removals) != 0 {
		t.Fatalf("expected repeated lyric kept, got %+v", removals)
	}
}

func TestFilterHallucinationsMusicSymbols(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 4, Text: "♪ ♪"},
		{Start: 5, End: 8, Text: "♪ la la ♪"},
	}

	kept, removals := FilterHallucinations(segments)

	if len(removals) != 1 || removals[0].Reason != "music_symbols" {
		t.Fatalf("expected music_symbols removal, got %+v", removals)
	}
	if len(kept) != 1 || kept[0].Text != "♪ la la ♪" {
		t.Fatalf("unexpected kept %+v", kept)
	}
}
