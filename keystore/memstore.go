package keystore

import "sync"

// MemStore is an in-memory Store for tests and ephemeral use.
type MemStore struct {
	mu       sync.Mutex
	accounts map[string]string

	// SetErr and DeleteErr, when non-nil, are returned by the
	// corresponding operations. Tests use these to exercise the
	// log-and-continue paths of callers.
	SetErr    error
	DeleteErr error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{accounts: make(map[string]string)}
}

// Set implements Store.
func (s *MemStore) Set(account, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SetErr != nil {
		return s.SetErr
	}
	delete(s.accounts, account)
	s.accounts[account] = value
	return nil
}

// Get implements Store.
func (s *MemStore) Get(account string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.accounts[account]
	return value, ok
}

// Delete implements Store.
func (s *MemStore) Delete(account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.accounts, account)
	return nil
}
