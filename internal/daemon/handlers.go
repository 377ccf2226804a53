package daemon

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"lyricsync/internal/api"
	"lyricsync/internal/player"
	"lyricsync/internal/services"
	"lyricsync/internal/transcription"
)

type upload struct {
	audio    transcription.Audio
	trackID  string
	language string
}

// readUpload parses the multipart body. The audio limit is enforced on the
// file part itself so oversize uploads report InvalidInput.
func (s *apiServer) readUpload(w http.ResponseWriter, r *http.Request) (upload, error) {
	var up upload
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return up, services.Wrap(services.ErrInvalidInput, "api", "upload", "request body too large", err)
		}
		return up, services.Wrap(services.ErrInvalidInput, "api", "upload", "expected multipart form with a file field", err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return up, services.Wrap(services.ErrInvalidInput, "api", "upload", "no file provided", err)
	}
	defer file.Close()

	data, err := readPart(file, s.maxUpload)
	if err != nil {
		return up, err
	}
	up.audio = transcription.Audio{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Data:      data,
	}
	up.trackID = strings.TrimSpace(r.FormValue("track_id"))
	up.language = strings.TrimSpace(r.FormValue("language"))
	return up, nil
}

func readPart(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "api", "upload", "read file", err)
	}
	if int64(len(data)) > limit {
		return nil, services.Wrap(services.ErrInvalidInput, "api", "upload", "file exceeds upload limit", nil)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrInvalidInput, "api", "upload", "file is empty", nil)
	}
	return data, nil
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		Provider:     status.Provider,
		LockFilePath: status.LockFilePath,
		Player:       api.FromPlayerStatus(status.Player),
		Dependencies: api.FromDependencies(status.Dependencies),
	}
	if !status.StartedAt.IsZero() {
		payload.StartedAt = status.StartedAt.UTC().Format(api.DateTimeFormat)
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// handleTranscribe is the synchronous route: it blocks until the transcript
// is committed to the player session and returns it.
func (s *apiServer) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	ticket, result, err := s.daemon.Session().TranscribeWait(r.Context(), up.audio, player.Request{
		TrackID:  up.trackID,
		Language: up.language,
	})
	if err != nil {
		if errors.Is(err, player.ErrSuperseded) {
			s.writeError(w, http.StatusConflict, "superseded by a newer request")
			return
		}
		s.writeFailure(w, err)
		return
	}
	resp := api.FromTranscript(result)
	resp.TrackID = ticket.TrackID
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleSelectTrack(w http.ResponseWriter, r *http.Request) {
	var req api.TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, services.Wrap(services.ErrInvalidInput, "api", "select track", "invalid json body", err))
		return
	}
	if strings.TrimSpace(req.TrackID) == "" {
		s.writeFailure(w, services.Wrap(services.ErrInvalidInput, "api", "select track", "track_id required", nil))
		return
	}
	session := s.daemon.Session()
	session.SelectTrack(req.TrackID)
	s.writeJSON(w, http.StatusOK, api.FromPlayerStatus(session.Status()))
}

func (s *apiServer) handlePlayerTranscribe(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	ticket, err := s.daemon.Session().Transcribe(r.Context(), up.audio, player.Request{
		TrackID:  up.trackID,
		Language: up.language,
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.TicketResponse{RequestID: ticket.RequestID, TrackID: ticket.TrackID})
}

func (s *apiServer) handlePlayerStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.FromPlayerStatus(s.daemon.Session().Status()))
}

func (s *apiServer) handlePlayerTranscript(w http.ResponseWriter, _ *http.Request) {
	session := s.daemon.Session()
	resp := api.FromTranscript(session.Transcript())
	resp.TrackID = session.TrackID()
	s.writeJSON(w, http.StatusOK, resp)
}

// handlePlayerActive answers for ?t= when given, otherwise for the session
// clock. It never moves the clock.
func (s *apiServer) handlePlayerActive(w http.ResponseWriter, r *http.Request) {
	session := s.daemon.Session()
	raw := strings.TrimSpace(r.URL.Query().Get("t"))
	if raw == "" {
		line, ok := session.ActiveNow()
		s.writeJSON(w, http.StatusOK, api.FromActive(line, ok, session.Status().Clock))
		return
	}
	clock, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(clock, 0) || math.IsNaN(clock) {
		s.writeFailure(w, services.Wrap(services.ErrInvalidInput, "api", "active", "t must be a number of seconds", err))
		return
	}
	line, ok := session.Active(clock)
	s.writeJSON(w, http.StatusOK, api.FromActive(line, ok, clock))
}

func (s *apiServer) handlePlayerClock(w http.ResponseWriter, r *http.Request) {
	var req api.ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, services.Wrap(services.ErrInvalidInput, "api", "clock", "invalid json body", err))
		return
	}
	if req.Time == nil {
		s.writeFailure(w, services.Wrap(services.ErrInvalidInput, "api", "clock", "time required", nil))
		return
	}
	line, ok := s.daemon.Session().SetClock(*req.Time)
	s.writeJSON(w, http.StatusOK, api.FromActive(line, ok, *req.Time))
}
