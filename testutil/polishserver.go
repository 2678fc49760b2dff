package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// PolishRequest is one recorded request to the fake polish service.
type PolishRequest struct {
	Text    string
	Tone    string
	Bearer  string
	BYOKKey string
}

// PolishServer is an in-process stand-in for the polish service. It
// records every request and can be switched into a failure mode.
type PolishServer struct {
	server *httptest.Server

	mu       sync.Mutex
	status   int
	rewrite  func(text, tone string) string
	requests []PolishRequest
}

// NewPolishServer starts a fake polish service that answers with the
// input prefixed by the requested tone. The server is shut down when
// the test ends.
func NewPolishServer(t *testing.T) *PolishServer {
	t.Helper()

	s := &PolishServer{
		rewrite: func(text, tone string) string { return "[" + tone + "] " + text },
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the server's base URL.
func (s *PolishServer) URL() string { return s.server.URL }

// FailWith makes subsequent requests answer with the given HTTP status.
func (s *PolishServer) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Succeed restores normal responses.
func (s *PolishServer) Succeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = 0
}

// Rewrite replaces the function producing polished text.
func (s *PolishServer) Rewrite(fn func(text, tone string) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewrite = fn
}

// Requests returns a copy of every recorded request, oldest first.
func (s *PolishServer) Requests() []PolishRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PolishRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *PolishServer) LastRequest(t *testing.T) PolishRequest {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("no requests recorded")
	}
	return s.requests[len(s.requests)-1]
}

func (s *PolishServer) handle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
		Tone string `json:"tone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := PolishRequest{
		Text:    body.Text,
		Tone:    body.Tone,
		BYOKKey: r.Header.Get("X-OpenAI-Key"),
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		req.Bearer = strings.TrimPrefix(auth, "Bearer ")
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	status := s.status
	rewrite := s.rewrite
	s.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    map[string]string{"polished": rewrite(body.Text, body.Tone)},
	})
}
