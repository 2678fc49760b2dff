package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

const notesFile = "notes.json"

// StoreConfig holds configuration for Store.
type StoreConfig struct {
	// Dir is the application-scoped directory holding notes.json.
	Dir string

	// Logger receives persistence warnings. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Store is a file-backed, newest-first note collection.
type Store struct {
	path   string
	logger zerolog.Logger

	mu    sync.RWMutex
	notes []Note
}

// NewStore opens the note collection in cfg.Dir, creating the directory
// if needed. A missing document starts empty; an unparseable document
// starts empty and logs a warning.
func NewStore(cfg StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	s := &Store{
		path:   filepath.Join(cfg.Dir, notesFile),
		logger: cfg.Logger,
	}
	s.load()
	return s, nil
}

// Add inserts note at the front (newest-first) and persists.
func (s *Store) Add(note Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = append([]Note{note}, s.notes...)
	s.save()
}

// Delete removes the note with the given ID, if present, and persists
// either way.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notes {
		if n.ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			break
		}
	}
	s.save()
}

// Clear removes all notes and persists.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = nil
	s.save()
}

// Notes returns a copy of the collection, newest first.
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Len returns the number of saved notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Get returns the note with the given ID.
func (s *Store) Get(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notes {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to read note history")
		return
	}

	if err := json.Unmarshal(data, &s.notes); err != nil {
		// History loss on corruption is accepted; start empty.
		s.notes = nil
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to parse note history")
	}
}

// save writes the whole collection via temp file + rename. Failures are
// logged and swallowed; the in-memory collection stands.
func (s *Store) save() {
	data, err := json.Marshal(s.notes)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode note history")
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to write note history")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to replace note history")
	}
}
