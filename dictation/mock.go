package dictation

import (
	"context"
	"sync"
)

// MockEngine is a scripted Engine implementation for testing.
type MockEngine struct {
	// Authorized is the answer to RequestAuthorization. AuthErr, when
	// non-nil, is returned alongside.
	Authorized bool
	AuthErr    error

	// StartErr, when non-nil, makes Start fail.
	StartErr error

	mu      sync.Mutex
	streams []*MockStream
}

// RequestAuthorization implements Engine.
func (e *MockEngine) RequestAuthorization(ctx context.Context) (bool, error) {
	return e.Authorized, e.AuthErr
}

// Start implements Engine.
func (e *MockEngine) Start(ctx context.Context) (Stream, error) {
	if e.StartErr != nil {
		return nil, e.StartErr
	}

	stream := &MockStream{results: make(chan Result, 16)}

	e.mu.Lock()
	e.streams = append(e.streams, stream)
	e.mu.Unlock()

	return stream, nil
}

// LastStream returns the most recently opened stream, or nil.
func (e *MockEngine) LastStream() *MockStream {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.streams) == 0 {
		return nil
	}
	return e.streams[len(e.streams)-1]
}

// MockStream is a scriptable Stream. Tests push hypotheses with Emit and
// terminate the stream with Finish.
type MockStream struct {
	results chan Result

	mu         sync.Mutex
	closed     bool
	audioEnded bool
}

// Results implements Stream.
func (s *MockStream) Results() <-chan Result { return s.results }

// EndAudio implements Stream.
func (s *MockStream) EndAudio() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audioEnded = true
}

// Close implements Stream.
func (s *MockStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
	}
}

// Emit delivers an incremental hypothesis.
func (s *MockStream) Emit(text string) {
	s.results <- Result{Text: text}
}

// EmitFinal delivers a final hypothesis and closes the result channel.
func (s *MockStream) EmitFinal(text string) {
	s.results <- Result{Text: text, Final: true}
	close(s.results)
}

// Fail delivers an engine error and closes the result channel.
func (s *MockStream) Fail(err error) {
	s.results <- Result{Err: err}
	close(s.results)
}

// Finish closes the result channel without a final hypothesis.
func (s *MockStream) Finish() {
	close(s.results)
}

// Closed reports whether Close was called.
func (s *MockStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// AudioEnded reports whether EndAudio was called.
func (s *MockStream) AudioEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audioEnded
}
