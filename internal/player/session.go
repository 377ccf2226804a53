package player

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lyricsync/internal/align"
	"lyricsync/internal/logging"
	"lyricsync/internal/services"
	"lyricsync/internal/transcript"
	"lyricsync/internal/transcription"
)

const component = "player"

// Request policies.
const (
	PolicySupersede = "supersede"
	PolicyReject    = "reject"
)

// ErrSuperseded is returned to waiters of a request whose result was
// discarded because a newer request or a track change replaced it.
var ErrSuperseded = errors.New("transcription request superseded")

// State is the lifecycle label reported by Status.
type State string

// Session states.
const (
	StateIdle         State = "idle"
	StateTranscribing State = "transcribing"
	StateReady        State = "ready"
	StateFailed       State = "failed"
)

// Config tunes a Session.
type Config struct {
	Policy   string
	Timeout  time.Duration
	Language string
}

// Request describes one transcription submission.
type Request struct {
	// TrackID tags the result. Empty uses the selected track, or a content
	// hash of the audio when no track is selected.
	TrackID  string
	Language string
}

// Ticket identifies a submitted request.
type Ticket struct {
	RequestID string `json:"request_id"`
	TrackID   string `json:"track_id"`
}

// Status is a snapshot of the session.
type Status struct {
	TrackID    string        `json:"track_id,omitempty"`
	State      State         `json:"state"`
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

type pending struct {
	id      string
	trackID string
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	result  transcript.Transcript
	started time.Time
	sampler *logging.ProgressSampler
}

// Session is safe for concurrent use.
type Session struct {
	provider transcription.Provider
	logger   *slog.Logger
	policy   string
	timeout  time.Duration
	language string
	newID    func() string

	cursor align.Cursor
	clock  align.Clock

	mu       sync.Mutex
	trackID  string
	current  *pending
	state    State
	progress float64
	lastErr  error
	lastID   string
	closed   bool
}

// New builds a session around provider.
func New(provider transcription.Provider, cfg Config, logger *slog.Logger) *Session {
	policy := strings.ToLower(strings.TrimSpace(cfg.Policy))
	if policy != PolicyReject {
		policy = PolicySupersede
	}
	return &Session{
		provider: provider,
		logger:   logging.NewComponentLogger(logger, component),
		policy:   policy,
		timeout:  cfg.Timeout,
		language: cfg.Language,
		newID:    uuid.NewString,
		state:    StateIdle,
	}
}

// SelectTrack switches the session to trackID. The transcript is cleared,
// the clock is rewound, and any request in flight is canceled. Selecting
// the current track again is a no-op.
func (s *Session) SelectTrack(trackID string) {
	trackID = strings.TrimSpace(trackID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if trackID == s.trackID {
		return
	}
	s.switchTrackLocked(trackID)
}

func (s *Session) switchTrackLocked(trackID string) {
	previous := s.trackID
	s.trackID = trackID
	s.cursor.Clear()
	s.clock.Set(0)
	s.cancelLocked()
	s.state = StateIdle
	s.progress = 0
	s.lastErr = nil
	s.logger.Info("track selected",
		logging.String(logging.FieldTrackID, trackID),
		logging.String("previous_track_id", previous),
	)
}

func (s *Session) cancelLocked() {
	if s.current == nil {
		return
	}
	s.current.cancel()
	s.current = nil
}

// Transcribe starts transcribing audio on its own goroutine and returns the
// ticket immediately. Under the reject policy a second request while one is
// in flight fails with services.ErrAlreadyInProgress.
func (s *Session) Transcribe(ctx context.Context, audio transcription.Audio, req Request) (Ticket, error) {
	ticket, _, err := s.start(ctx, audio, req)
	return ticket, err
}

// TranscribeWait submits audio like Transcribe and blocks until the request
// settles or ctx is done. It returns the committed transcript, ErrSuperseded
// when the result was discarded, or the classified provider failure.
func (s *Session) TranscribeWait(ctx context.Context, audio transcription.Audio, req Request) (Ticket, transcript.Transcript, error) {
	ticket, p, err := s.start(ctx, audio, req)
	if err != nil {
		return ticket, transcript.Transcript{}, err
	}
	select {
	case <-p.done:
	case <-ctx.Done():
		return ticket, transcript.Transcript{}, services.Classify(component, "wait", ctx.Err())
	}
	if p.err != nil {
		return ticket, transcript.Transcript{}, p.err
	}
	return ticket, p.result.Clone(), nil
}

func (s *Session) start(ctx context.Context, audio transcription.Audio, req Request) (Ticket, *pending, error) {
	if len(audio.Data) == 0 {
		return Ticket{}, nil, services.Wrap(services.ErrInvalidInput, component, "transcribe", "audio payload is empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Ticket{}, nil, services.Wrap(services.ErrProviderUnavailable, component, "transcribe", "session closed", nil)
	}

	trackID := strings.TrimSpace(req.TrackID)
	if trackID == "" {
		trackID = s.trackID
	}
	if trackID == "" {
		trackID = ContentID(audio.Data)
	}

	if s.current != nil && s.policy == PolicyReject {
		return Ticket{}, nil, services.Wrap(services.ErrAlreadyInProgress, component, "transcribe",
			fmt.Sprintf("request %s is still running", s.current.id), nil)
	}
	if trackID != s.trackID {
		s.switchTrackLocked(trackID)
	}
	if s.current != nil {
		s.logger.Info("superseding transcription request",
			logging.String("superseded_request_id", s.current.id),
			logging.String(logging.FieldTrackID, s.current.trackID),
		)
		s.cancelLocked()
	}

	id := s.newID()
	runCtx := services.WithProvider(services.WithTrackID(services.WithRequestID(context.WithoutCancel(ctx), id), trackID), s.provider.Name())
	var cancel context.CancelFunc
	if s.timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, s.timeout)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}
	p := &pending{
		id:      id,
		trackID: trackID,
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
		sampler: logging.NewProgressSampler(10),
	}
	s.current = p
	s.lastID = id
	s.state = StateTranscribing
	s.progress = 0
	s.lastErr = nil

	language := req.Language
	if strings.TrimSpace(language) == "" {
		language = s.language
	}
	logging.WithContext(runCtx, s.logger).Info("transcription requested",
		logging.Int("bytes", audio.Size()),
		logging.String("policy", s.policy),
	)
	go s.run(runCtx, p, audio, transcription.Options{
		Language: language,
		Progress: func(percent float64) { s.reportProgress(runCtx, p, percent) },
	})
	return Ticket{RequestID: id, TrackID: trackID}, p, nil
}

func (s *Session) run(ctx context.Context, p *pending, audio transcription.Audio, opts transcription.Options) {
	defer p.cancel()
	result, err := s.provider.Transcribe(ctx, audio, opts)
	if err != nil {
		err = services.Classify(component, "transcribe", err)
	}
	s.finish(ctx, p, result, err)
}

func (s *Session) reportProgress(ctx context.Context, p *pending, percent float64) {
	s.mu.Lock()
	if s.current != p {
		s.mu.Unlock()
		return
	}
	s.progress = percent
	s.mu.Unlock()
	if p.sampler.ShouldLog(percent, "transcribe") {
		logging.WithContext(ctx, s.logger).Info("transcription progress", logging.Float64("percent", percent))
	}
}

func (s *Session) finish(ctx context.Context, p *pending, result transcript.Transcript, err error) {
	logger := logging.WithContext(ctx, s.logger)
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		close(p.done)
	}()

	if s.current != p || s.trackID != p.trackID {
		p.err = ErrSuperseded
		logger.Info("discarding stale transcription result",
			logging.String("current_track_id", s.trackID),
			logging.Bool("failed", err != nil),
		)
		return
	}
	s.current = nil

	if err != nil {
		p.err = err
		s.state = StateFailed
		s.progress = 0
		s.lastErr = err
		logging.WarnWithContext(logger, "transcription failed", "transcription_failed",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.Duration("elapsed", time.Since(p.started)),
			logging.String(logging.FieldErrorHint, services.UserMessage(err)),
			logging.String(logging.FieldImpact, "previous lyrics remain displayed"),
		)
		return
	}

	result = transcript.Normalize(result)
	s.cursor.Install(result)
	p.result = result
	s.state = StateReady
	s.progress = 100
	logger.Info("transcript installed",
		logging.Int("segments", result.Len()),
		logging.Duration("elapsed", time.Since(p.started)),
	)
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		TrackID:    s.trackID,
		State:      s.state,
		RequestID:  s.lastID,
		Progress:   s.progress,
		Segments:   s.cursor.Transcript().Len(),
		Generation: s.cursor.Generation(),
		Clock:      s.clock.Seconds(),
		Provider:   s.provider.Name(),
		Policy:     s.policy,
	}
	if s.lastErr != nil {
		st.Error = services.UserMessage(s.lastErr)
		st.ErrorKind = services.KindOf(s.lastErr)
	}
	return st
}

// TrackID returns the selected track.
func (s *Session) TrackID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trackID
}

// Transcript returns a copy of the installed transcript.
func (s *Session) Transcript() transcript.Transcript {
	return s.cursor.Transcript()
}

// Active returns the active line at an explicit clock value.
func (s *Session) Active(current float64) (align.Active, bool) {
	return s.cursor.At(current)
}

// ActiveNow returns the active line at the session clock.
func (s *Session) ActiveNow() (align.Active, bool) {
	return s.cursor.At(s.clock.Seconds())
}

// SetClock records the playback position and returns the line active there.
func (s *Session) SetClock(seconds float64) (align.Active, bool) {
	s.clock.Set(seconds)
	return s.cursor.At(seconds)
}

// Close cancels any request in flight and refuses new ones.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelLocked()
}

// ContentID derives a stable track identifier from audio bytes.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256-" + hex.EncodeToString(sum[:8])
}
