package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrNoSession       = errors.New("no recording session")
	ErrNotRecording    = errors.New("session is not recording")
	ErrBusy            = errors.New("a clip is already being transcribed")
	ErrEmptyTranscript = errors.New("transcript is empty")
	ErrSessionReplaced = errors.New("session was replaced while transcribing")
)

type Session struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patient_id"`
	Recording    bool      `json:"recording"`
	InFlight     bool      `json:"in_flight"`
	Transcript   string    `json:"transcript"`
	Clips        int       `json:"clips"`
	Error        bool      `json:"error"`
	ErrorMessage string    `json:"error_message,omitempty"`
	StartedAt    time.Time `json:"started_at"`
}

// Sessions keeps at most one recording session per patient. A session
// has at most one transcription request outstanding; the HTTP call runs
// without the lock held.
type Sessions struct {
	mu        sync.Mutex
	byPatient map[string]*Session
	t         Transcriber
	now       func() time.Time
}

func NewSessions(t Transcriber, now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{
		byPatient: make(map[string]*Session),
		t:         t,
		now:       now,
	}
}

// Start opens a fresh recording session, dropping any previous one.
func (s *Sessions) Start(patientID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:        uuid.New().String(),
		PatientID: patientID,
		Recording: true,
		StartedAt: s.now(),
	}
	s.byPatient[patientID] = sess
	return *sess
}

func (s *Sessions) Get(patientID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byPatient[patientID]
	if !ok {
		return Session{}, ErrNoSession
	}
	return *sess, nil
}

func (s *Sessions) Stop(patientID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byPatient[patientID]
	if !ok {
		return Session{}, ErrNoSession
	}
	sess.Recording = false
	return *sess, nil
}

// AddClip transcribes one clip and appends the text to the running
// transcript. On failure the session records the error and stops
// recording.
func (s *Sessions) AddClip(ctx context.Context, patientID string, clip Clip) (Session, error) {
	op := "Sessions.AddClip"

	s.mu.Lock()
	sess, ok := s.byPatient[patientID]
	switch {
	case !ok:
		s.mu.Unlock()
		return Session{}, fmt.Errorf("%s: %w", op, ErrNoSession)
	case !sess.Recording:
		snapshot := *sess
		s.mu.Unlock()
		return snapshot, fmt.Errorf("%s: %w", op, ErrNotRecording)
	case sess.InFlight:
		snapshot := *sess
		s.mu.Unlock()
		return snapshot, fmt.Errorf("%s: %w", op, ErrBusy)
	}
	sess.InFlight = true
	sess.Error = false
	sess.ErrorMessage = ""
	id := sess.ID
	s.mu.Unlock()

	text, err := s.t.Transcribe(ctx, clip)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byPatient[patientID]
	if !ok || current.ID != id {
		return Session{}, fmt.Errorf("%s: %w", op, ErrSessionReplaced)
	}
	current.InFlight = false
	if err != nil {
		current.Error = true
		current.ErrorMessage = err.Error()
		current.Recording = false
		return *current, fmt.Errorf("%s: %w", op, err)
	}
	current.Clips++
	if text != "" {
		current.Transcript = strings.TrimSpace(current.Transcript + " " + text)
	}
	return *current, nil
}

// Submit closes the session and hands back its transcript.
func (s *Sessions) Submit(patientID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byPatient[patientID]
	if !ok {
		return "", ErrNoSession
	}
	if sess.InFlight {
		return "", ErrBusy
	}
	transcript := strings.TrimSpace(sess.Transcript)
	if transcript == "" {
		return "", ErrEmptyTranscript
	}
	delete(s.byPatient, patientID)
	return transcript, nil
}

func (s *Sessions) Discard(patientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byPatient, patientID)
}

// Summary shortens a transcript to at most max runes on a word
// boundary, adding an ellipsis when cut.
func Summary(transcript string, max int) string {
	transcript = strings.Join(strings.Fields(transcript), " ")
	if utf8.RuneCountInString(transcript) <= max {
		return transcript
	}
	runes := []rune(transcript)
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;") + "…"
}
