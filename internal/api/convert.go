package api

import (
	"net/http"

	"lyricsync/internal/align"
	"lyricsync/internal/deps"
	"lyricsync/internal/player"
	"lyricsync/internal/services"
	"lyricsync/internal/transcript"
)

// DateTimeFormat is used for RFC3339 timestamps in API payloads.
const DateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FromTranscript converts a transcript into its wire form. The lyrics slice
// is never nil so empty transcripts encode as [].
func FromTranscript(t transcript.Transcript) LyricsResponse {
	lyrics := make([]Lyric, 0, len(t.Segments))
	for _, seg := range t.Segments {
		lyrics = append(lyrics, Lyric{Time: seg.Start, End: seg.End, Text: seg.Text})
	}
	return LyricsResponse{Lyrics: lyrics, Language: t.Language, Duration: t.Duration}
}

// ToTranscript converts a wire transcript back into the model, normalizing
// order and text so externally edited files align the same way.
func ToTranscript(resp LyricsResponse) transcript.Transcript {
	segments := make([]transcript.Segment, 0, len(resp.Lyrics))
	for _, line := range resp.Lyrics {
		segments = append(segments, transcript.Segment{Start: line.Time, End: line.End, Text: line.Text})
	}
	return transcript.Normalize(transcript.Transcript{
		Segments: segments,
		Language: resp.Language,
		Duration: resp.Duration,
	})
}

// FromActive converts an alignment result.
func FromActive(line align.Active, ok bool, clock float64) ActiveResponse {
	if !ok {
		return ActiveResponse{Clock: clock}
	}
	return ActiveResponse{
		Active: &ActiveLine{Index: line.Index, Time: line.Segment.Start, Text: line.Segment.Text},
		Clock:  clock,
	}
}

// FromPlayerStatus converts a session snapshot.
func FromPlayerStatus(st player.Status) PlayerStatus {
	return PlayerStatus{
		TrackID:    st.TrackID,
		State:      string(st.State),
		RequestID:  st.RequestID,
		Progress:   st.Progress,
		Error:      st.Error,
		ErrorKind:  st.ErrorKind,
		Segments:   st.Segments,
		Generation: st.Generation,
		Clock:      st.Clock,
		Provider:   st.Provider,
		Policy:     st.Policy,
	}
}

// FromDependencies converts dependency checks.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	return out
}

// HTTPStatusForKind maps failure kinds to response codes.
func HTTPStatusForKind(kind services.Kind) int {
	switch kind {
	case services.KindInvalidInput:
		return http.StatusBadRequest
	case services.KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case services.KindDecodeFailure:
		return http.StatusUnprocessableEntity
	case services.KindQuotaExceeded:
		return http.StatusTooManyRequests
	case services.KindAlreadyInProgress:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

// FromError builds the error body for err. Input errors carry the full
// message as detail so callers can see which field was rejected.
func FromError(err error) (int, ErrorResponse) {
	kind := services.KindOf(err)
	body := ErrorResponse{Error: services.UserMessage(err), Kind: kind}
	if kind == services.KindInvalidInput {
		body.Detail = err.Error()
	}
	return HTTPStatusForKind(kind), body
}
