package api

import "lyricsync/internal/services"

// Lyric is one timed line of a transcript.
type Lyric struct {
	Time float64 `json:"time"`
	End  float64 `json:"end,omitempty"`
	Text string  `json:"text"`
}

// LyricsResponse carries a full transcript.
type LyricsResponse struct {
	Lyrics   []Lyric `json:"lyrics"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	TrackID  string  `json:"track_id,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string        `json:"error"`
	Kind   services.Kind `json:"kind,omitempty"`
	Detail string        `json:"detail,omitempty"`
}

// TicketResponse acknowledges an asynchronous transcription request.
type TicketResponse struct {
	RequestID string `json:"request_id"`
	TrackID   string `json:"track_id"`
}

// TrackRequest selects the player track.
type TrackRequest struct {
	TrackID string `json:"track_id"`
}

// ClockRequest reports the playback position.
type ClockRequest struct {
	Time *float64 `json:"time"`
}

// ActiveLine is the line shown for a clock value.
type ActiveLine struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
	Text  string  `json:"text"`
}

// ActiveResponse wraps the active line; Active is null when no line is
// active.
type ActiveResponse struct {
	Active *ActiveLine `json:"active"`
	Clock  float64     `json:"clock"`
}

// PlayerStatus describes the player session.
type PlayerStatus struct {
	TrackID    string        `json:"track_id,omitempty"`
	State      string        `json:"state"`
	RequestID  string        `json:"request_id,omitempty"`
	Progress   float64       `json:"progress"`
	Error      string        `json:"error,omitempty"`
	ErrorKind  services.Kind `json:"error_kind,omitempty"`
	Segments   int           `json:"segments"`
	Generation uint64        `json:"generation"`
	Clock      float64       `json:"clock"`
	Provider   string        `json:"provider"`
	Policy     string        `json:"policy"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus describes the running daemon.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	Provider     string             `json:"provider"`
	LockFilePath string             `json:"lock_file_path"`
	StartedAt    string             `json:"started_at,omitempty"`
	Player       PlayerStatus       `json:"player"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
