package keystore

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for the file encryption key.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	saltLength   = 16
	storeFile    = "credentials.bin"
	saltFile     = "credentials.salt"
	storePerms   = 0o600
	storeDirMode = 0o700
)

// FileStore persists accounts as a single encrypted file. The whole
// account map is sealed with XChaCha20-Poly1305 under a key derived from
// the passphrase with scrypt; the random salt lives next to the store.
type FileStore struct {
	path     string
	saltPath string
	key      []byte

	mu       sync.Mutex
	accounts map[string]string
}

// NewFileStore opens (or creates) an encrypted store in dir. The
// passphrase protects the credential file at rest; it is typically a
// machine-local secret rather than something the user types.
func NewFileStore(dir, passphrase string) (*FileStore, error) {
	if err := os.MkdirAll(dir, storeDirMode); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}

	s := &FileStore{
		path:     filepath.Join(dir, storeFile),
		saltPath: filepath.Join(dir, saltFile),
	}

	salt, err := s.loadOrCreateSalt()
	if err != nil {
		return nil, err
	}

	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive keystore key: %w", err)
	}
	s.key = key

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Set implements Store. The full account map is re-sealed and written
// atomically, so a prior value never coexists with a new one.
func (s *FileStore) Set(account, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.accounts, account)
	s.accounts[account] = value
	return s.save()
}

// Get implements Store.
func (s *FileStore) Get(account string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.accounts[account]
	return value, ok
}

// Delete implements Store.
func (s *FileStore) Delete(account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account]; !ok {
		return nil
	}
	delete(s.accounts, account)
	return s.save()
}

func (s *FileStore) loadOrCreateSalt() ([]byte, error) {
	if salt, err := os.ReadFile(s.saltPath); err == nil && len(salt) == saltLength {
		return salt, nil
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate keystore salt: %w", err)
	}
	if err := os.WriteFile(s.saltPath, salt, storePerms); err != nil {
		return nil, fmt.Errorf("write keystore salt: %w", err)
	}
	return salt, nil
}

func (s *FileStore) load() error {
	s.accounts = make(map[string]string)

	sealed, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read keystore: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return fmt.Errorf("open keystore cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize() {
		return ErrCorruptStore
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrCorruptStore
	}

	if err := json.Unmarshal(plaintext, &s.accounts); err != nil {
		return ErrCorruptStore
	}
	return nil
}

// save seals and writes the account map via temp file + rename.
func (s *FileStore) save() error {
	plaintext, err := json.Marshal(s.accounts)
	if err != nil {
		return fmt.Errorf("encode keystore: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return fmt.Errorf("open keystore cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate keystore nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, storePerms); err != nil {
		return fmt.Errorf("write keystore: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace keystore: %w", err)
	}
	return nil
}
