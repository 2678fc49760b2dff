package auth

import (
	"context"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mumblefish/noteflow/keystore"
	"github.com/mumblefish/noteflow/polish"
)

// URLOpener opens a URL in the platform's external browser.
type URLOpener interface {
	OpenURL(url string) error
}

// URLOpenerFunc adapts a function to URLOpener.
type URLOpenerFunc func(url string) error

// OpenURL implements URLOpener.
func (f URLOpenerFunc) OpenURL(url string) error { return f(url) }

// ProfileFetcher loads the signed-in user's profile. *polish.Client
// satisfies this.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (polish.Profile, error)
}

// ManagerConfig holds configuration for Manager.
type ManagerConfig struct {
	// Store is the credential store (required).
	Store keystore.Store

	// BaseURL is the service root used to build sign-in URLs, e.g.
	// "https://mumble.fish".
	BaseURL string

	// CallbackScheme is the URL scheme the service redirects back to,
	// e.g. "mumblefish" for mumblefish://auth/callback.
	CallbackScheme string

	// Opener opens sign-in URLs externally (required for BeginSignIn).
	Opener URLOpener

	// Profiles refreshes the cached email after sign-in. Optional;
	// when nil the email stays whatever the store holds.
	Profiles ProfileFetcher

	// Logger receives best-effort failure notices. Defaults to a no-op
	// logger.
	Logger zerolog.Logger
}

// Manager is the session and credential manager.
type Manager struct {
	store          keystore.Store
	baseURL        string
	callbackScheme string
	opener         URLOpener
	profiles       ProfileFetcher
	logger         zerolog.Logger

	mu        sync.Mutex
	signedIn  bool
	userEmail string
	useBYOK   bool
}

// NewManager creates a Manager. Call Initialize to load persisted state.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		store:          cfg.Store,
		baseURL:        cfg.BaseURL,
		callbackScheme: cfg.CallbackScheme,
		opener:         cfg.Opener,
		profiles:       cfg.Profiles,
		logger:         cfg.Logger,
	}
}

// Initialize derives in-memory state from the credential store: a
// non-empty persisted token means signed in, with whatever cached email
// exists; a persisted BYOK key enables use-own-key mode.
func (m *Manager) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token, ok := m.store.Get(keystore.AccountAuthToken); ok && token != "" {
		m.signedIn = true
		m.userEmail, _ = m.store.Get(keystore.AccountUserEmail)

		if expiry, err := TokenExpiry(token); err == nil {
			m.logger.Debug().Time("expires", expiry).Msg("restored session token")
		}
	}

	_, m.useBYOK = m.store.Get(keystore.AccountBYOKKey)
}

// IsSignedIn reports whether a session token is held.
func (m *Manager) IsSignedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signedIn
}

// UserEmail returns the cached email. Advisory only: it may be stale or
// empty even when signed in.
func (m *Manager) UserEmail() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userEmail
}

// UseBYOK reports whether use-own-key mode is enabled.
func (m *Manager) UseBYOK() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.useBYOK
}

// CanPolish reports polish entitlement: signed in or holding a non-empty
// BYOK key. Recomputed on every call, never cached.
func (m *Manager) CanPolish() bool {
	m.mu.Lock()
	signedIn := m.signedIn
	m.mu.Unlock()

	if signedIn {
		return true
	}
	key, _ := m.store.Get(keystore.AccountBYOKKey)
	return key != ""
}

// AuthToken returns the persisted session token, or empty.
func (m *Manager) AuthToken() string {
	token, _ := m.store.Get(keystore.AccountAuthToken)
	return token
}

// BYOKKey returns the persisted BYOK key, or empty.
func (m *Manager) BYOKKey() string {
	key, _ := m.store.Get(keystore.AccountBYOKKey)
	return key
}

// Credentials returns the auth material for outgoing polish requests.
// The BYOK key is only supplied while use-own-key mode is enabled.
func (m *Manager) Credentials() polish.Credentials {
	creds := polish.Credentials{AuthToken: m.AuthToken()}
	if m.UseBYOK() {
		creds.BYOKKey = m.BYOKKey()
	}
	return creds
}

// BeginSignIn opens the service's authorization URL for the given
// provider ("google" or "github") in the external browser. No local
// state changes; the flow completes out of process and comes back via
// HandleCallback.
func (m *Manager) BeginSignIn(provider string) error {
	redirect := m.callbackScheme + "://auth/callback"
	signInURL := m.baseURL + "/api/v1/auth/oauth/" + provider +
		"?redirect_uri=" + url.QueryEscape(redirect)
	return m.opener.OpenURL(signInURL)
}

// HandleCallback ingests the redirect URL delivered after browser
// sign-in. A callback carrying an error parameter, or no token, is
// ignored entirely: no state change, nothing surfaced. Otherwise the
// token is persisted, the session becomes signed in, and the profile is
// refreshed in the background on a best-effort basis.
func (m *Manager) HandleCallback(rawURL string) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return
	}

	query := parsed.Query()
	if query.Get("error") != "" {
		return
	}
	token := query.Get("token")
	if token == "" {
		return
	}

	if err := m.store.Set(keystore.AccountAuthToken, token); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist auth token")
		return
	}

	m.mu.Lock()
	m.signedIn = true
	m.mu.Unlock()

	go m.refreshProfile(token)
}

// refreshProfile fetches and caches the user email. Every failure is
// silent; a stale or absent email is acceptable.
func (m *Manager) refreshProfile(token string) {
	if m.profiles == nil {
		return
	}

	profile, err := m.profiles.FetchProfile(context.Background(), token)
	if err != nil {
		m.logger.Debug().Err(err).Msg("profile fetch failed")
		return
	}

	m.mu.Lock()
	m.userEmail = profile.Email
	m.mu.Unlock()

	if err := m.store.Set(keystore.AccountUserEmail, profile.Email); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist user email")
	}
}

// SignOut deletes the token and email and clears in-memory sign-in
// state. Idempotent; store failures are logged and swallowed.
func (m *Manager) SignOut() {
	if err := m.store.Delete(keystore.AccountAuthToken); err != nil {
		m.logger.Warn().Err(err).Msg("failed to delete auth token")
	}
	if err := m.store.Delete(keystore.AccountUserEmail); err != nil {
		m.logger.Warn().Err(err).Msg("failed to delete user email")
	}

	m.mu.Lock()
	m.signedIn = false
	m.userEmail = ""
	m.mu.Unlock()
}

// SetBYOKKey stores a bring-your-own API key. An empty value deletes the
// key and disables use-own-key mode. Store failures are logged and
// swallowed; the mode flag still follows the caller's intent.
func (m *Manager) SetBYOKKey(value string) {
	if value == "" {
		if err := m.store.Delete(keystore.AccountBYOKKey); err != nil {
			m.logger.Warn().Err(err).Msg("failed to delete BYOK key")
		}
		m.mu.Lock()
		m.useBYOK = false
		m.mu.Unlock()
		return
	}

	if err := m.store.Set(keystore.AccountBYOKKey, value); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist BYOK key")
	}
	m.mu.Lock()
	m.useBYOK = true
	m.mu.Unlock()
}
