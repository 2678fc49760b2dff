package noteflow

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mumblefish/noteflow/auth"
	"github.com/mumblefish/noteflow/config"
	"github.com/mumblefish/noteflow/dictation"
	"github.com/mumblefish/noteflow/history"
	"github.com/mumblefish/noteflow/keystore"
	"github.com/mumblefish/noteflow/notify"
	"github.com/mumblefish/noteflow/polish"
)

// ServicesConfig configures NewServices.
type ServicesConfig struct {
	// DataDir is the application-scoped directory holding settings,
	// credentials, and note history (required).
	DataDir string

	// Engine is the platform transcription capability (required).
	Engine dictation.Engine

	// Opener opens sign-in URLs in the platform browser. Required for
	// BeginSignIn; other flows work without it.
	Opener auth.URLOpener

	// Keystore overrides the default file-backed credential store, for
	// hosts with a platform keychain. When nil a FileStore is opened
	// under DataDir with KeystorePassphrase.
	Keystore keystore.Store

	// KeystorePassphrase protects the default file-backed store. Ignored
	// when Keystore is set.
	KeystorePassphrase string

	// HTTPClient overrides the polish transport. Defaults to a client
	// with the standard request timeout.
	HTTPClient *http.Client

	// Notifier receives state-change events. Defaults to a no-op.
	Notifier notify.Notifier

	// Logger is shared by every component. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Services wires the whole stack with common defaults. Hosts that need
// finer control can construct the components directly.
type Services struct {
	Settings     config.Settings
	Keystore     keystore.Store
	Auth         *auth.Manager
	History      *history.Store
	Client       *polish.Client
	Orchestrator *polish.Orchestrator
	Session      *dictation.Session
	Coordinator  *Coordinator
	Notifier     notify.Notifier
}

// NewServices builds the full capture-and-polish stack rooted at
// cfg.DataDir and restores persisted state: settings, credentials, and
// note history.
func NewServices(cfg ServicesConfig) (*Services, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("noteflow: DataDir is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("noteflow: Engine is required")
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}

	s := &Services{Notifier: notifier}
	s.Settings = config.Load(cfg.DataDir, cfg.Logger)

	store := cfg.Keystore
	if store == nil {
		fileStore, err := keystore.NewFileStore(
			filepath.Join(cfg.DataDir, "keystore"), cfg.KeystorePassphrase)
		if err != nil {
			return nil, fmt.Errorf("open keystore: %w", err)
		}
		store = fileStore
	}
	s.Keystore = store

	s.Client = polish.NewClient(polish.ClientConfig{
		BaseURL:    s.Settings.ServiceBaseURL,
		HTTPClient: cfg.HTTPClient,
	})

	s.Auth = auth.NewManager(auth.ManagerConfig{
		Store:          store,
		BaseURL:        s.Settings.ServiceBaseURL,
		CallbackScheme: s.Settings.CallbackScheme,
		Opener:         cfg.Opener,
		Profiles:       s.Client,
		Logger:         cfg.Logger,
	})
	s.Auth.Initialize()

	historyStore, err := history.NewStore(history.StoreConfig{
		Dir:    cfg.DataDir,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open note history: %w", err)
	}
	s.History = historyStore

	s.Orchestrator = polish.NewOrchestrator(polish.OrchestratorConfig{
		Client:      s.Client,
		CanPolish:   s.Auth.CanPolish,
		Credentials: s.Auth.Credentials,
		OnSessionExpired: func() {
			s.Auth.SignOut()
			notifier.Notify(notify.NewEvent(notify.EventSignedOut, ""))
		},
		Logger: cfg.Logger,
	})

	s.Session = dictation.NewSession(dictation.SessionConfig{
		Engine: cfg.Engine,
		Logger: cfg.Logger,
	})

	s.Coordinator = NewCoordinator(CoordinatorConfig{
		Session:      s.Session,
		Orchestrator: s.Orchestrator,
		History:      s.History,
		Settings:     s.Settings,
		SettingsDir:  cfg.DataDir,
		Notifier:     notifier,
		Logger:       cfg.Logger,
	})

	return s, nil
}

// HandleCallback forwards an OAuth callback URL to the credential
// manager and publishes a signed-in event when it lands a session.
func (s *Services) HandleCallback(rawURL string) {
	wasSignedIn := s.Auth.IsSignedIn()
	s.Auth.HandleCallback(rawURL)
	if !wasSignedIn && s.Auth.IsSignedIn() {
		s.Notifier.Notify(notify.NewEvent(notify.EventSignedIn, ""))
	}
}

// SignOut signs the user out and publishes a signed-out event.
func (s *Services) SignOut() {
	s.Auth.SignOut()
	s.Notifier.Notify(notify.NewEvent(notify.EventSignedOut, ""))
}
