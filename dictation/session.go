package dictation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Phase is the dictation lifecycle state.
type Phase string

// Dictation phases.
const (
	PhaseIdle      Phase = "idle"
	PhaseRecording Phase = "recording"
)

// Advisory messages surfaced to the user.
const (
	msgNotAuthorized = "Speech recognition not authorized"
)

// SessionConfig holds configuration for Session.
type SessionConfig struct {
	// Engine is the transcription capability (required).
	Engine Engine

	// Logger receives engine warnings. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Session owns the recording lifecycle and the live transcript buffer.
// All engine callbacks are funneled through the session mutex, so state
// is consistent no matter which goroutine the engine delivers on.
type Session struct {
	engine Engine
	logger zerolog.Logger

	mu         sync.Mutex
	phase      Phase
	transcript string
	errMsg     string
	authorized bool
	stream     Stream

	authDone chan struct{}
}

// NewSession creates a Session and starts the one-time authorization
// query in the background. The result is cached for the session's life.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		engine:   cfg.Engine,
		logger:   cfg.Logger,
		phase:    PhaseIdle,
		authDone: make(chan struct{}),
	}

	go func() {
		defer close(s.authDone)

		ok, err := s.engine.RequestAuthorization(context.Background())
		s.mu.Lock()
		defer s.mu.Unlock()

		s.authorized = ok && err == nil
		if !s.authorized {
			s.errMsg = msgNotAuthorized + ". Please enable speech recognition in system settings"
			s.logger.Warn().Err(err).Msg("speech recognition not authorized")
		}
	}()

	return s
}

// AwaitAuthorization blocks until the startup authorization query has
// completed, then reports the cached result. Returns false if ctx ends
// first.
func (s *Session) AwaitAuthorization(ctx context.Context) bool {
	select {
	case <-s.authDone:
		return s.Authorized()
	case <-ctx.Done():
		return false
	}
}

// Authorized reports the cached authorization state.
func (s *Session) Authorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authorized
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Recording reports whether a recording is active.
func (s *Session) Recording() bool {
	return s.Phase() == PhaseRecording
}

// Transcript returns the live transcript buffer.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// SetTranscript replaces the transcript buffer. The coordinator uses this
// to seed a continuation and to apply the one-time concatenation at stop
// time.
func (s *Session) SetTranscript(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = text
}

// ErrorMessage returns the current advisory message, if any.
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Start opens a recording. When appendMode is false the transcript buffer
// is cleared first; in append mode the buffer is kept so a continuation
// can be seeded by the caller. Not authorized or already recording is a
// silent failure: an advisory message is set, no state changes.
func (s *Session) Start(ctx context.Context, appendMode bool) {
	s.mu.Lock()

	if !s.authorized {
		s.errMsg = msgNotAuthorized
		s.mu.Unlock()
		return
	}
	if s.phase == PhaseRecording {
		s.mu.Unlock()
		return
	}

	if !appendMode {
		s.transcript = ""
	}
	s.errMsg = ""
	s.mu.Unlock()

	stream, err := s.engine.Start(ctx)
	if err != nil {
		s.mu.Lock()
		s.errMsg = "Failed to start recording: " + err.Error()
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.stream = stream
	s.phase = PhaseRecording
	s.mu.Unlock()

	go s.consume(stream)
}

// consume funnels engine results back under the session mutex.
func (s *Session) consume(stream Stream) {
	for result := range stream.Results() {
		if result.Err != nil {
			s.logger.Warn().Err(result.Err).Msg("transcription engine error")
			s.teardown(stream)
			return
		}

		s.mu.Lock()
		if s.stream == stream {
			// Each result is the engine's full current hypothesis;
			// replace, never append.
			s.transcript = result.Text
		}
		s.mu.Unlock()

		if result.Final {
			s.teardown(stream)
			return
		}
	}
	s.teardown(stream)
}

// Stop signals that no more audio will arrive and tears the recording
// down. A no-op when idle.
func (s *Session) Stop() {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()

	if stream == nil {
		return
	}
	stream.EndAudio()
	s.teardown(stream)
}

// teardown releases the stream and returns to idle. Both the caller and
// the engine-driven path can get here; only the first wins.
func (s *Session) teardown(stream Stream) {
	s.mu.Lock()
	if s.stream != stream {
		s.mu.Unlock()
		return
	}
	s.stream = nil
	s.phase = PhaseIdle
	s.mu.Unlock()

	stream.Close()
}
