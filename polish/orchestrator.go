package polish

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mumblefish/noteflow/tone"
)

// Phase is the orchestrator's request state.
type Phase string

// Orchestrator phases.
const (
	PhaseIdle     Phase = "idle"
	PhaseInFlight Phase = "inFlight"
)

// OrchestratorConfig holds configuration for Orchestrator.
type OrchestratorConfig struct {
	// Client performs the actual requests (required).
	Client *Client

	// CanPolish reports whether the caller is entitled to polish.
	// Recomputed on every request, never cached (required).
	CanPolish func() bool

	// Credentials supplies the auth material for a request (required).
	Credentials func() Credentials

	// OnSessionExpired runs when the service rejects the auth token.
	// Typically wired to the credential manager's sign-out.
	OnSessionExpired func()

	// Logger receives request outcomes. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Orchestrator issues at most one polish request at a time and keeps the
// last result and last error observable. While a request is in flight the
// previous result is deliberately kept, so callers can keep showing it
// until the new one arrives.
type Orchestrator struct {
	client           *Client
	canPolish        func() bool
	credentials      func() Credentials
	onSessionExpired func()
	logger           zerolog.Logger

	mu         sync.Mutex
	phase      Phase
	lastResult string
	lastErr    string
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		client:           cfg.Client,
		canPolish:        cfg.CanPolish,
		credentials:      cfg.Credentials,
		onSessionExpired: cfg.OnSessionExpired,
		logger:           cfg.Logger,
		phase:            PhaseIdle,
	}
}

// Phase returns the current request phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// InFlight reports whether a request is in flight.
func (o *Orchestrator) InFlight() bool {
	return o.Phase() == PhaseInFlight
}

// LastResult returns the most recent polished text.
func (o *Orchestrator) LastResult() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastResult
}

// LastError returns the user-facing message of the most recent failure.
func (o *Orchestrator) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// SeedResult replaces the last result without a network call. The
// coordinator seeds a continued note's polished text this way.
func (o *Orchestrator) SeedResult(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastResult = text
}

// Reset clears the last result and error.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastResult = ""
	o.lastErr = ""
}

// Polish sends text for rewriting and returns the polished result.
//
// Preconditions fail locally without touching the network or the phase:
// text that trims to empty yields ErrEmptyText, and a caller whose
// entitlement check fails yields ErrNotEntitled. A request already in
// flight yields ErrInFlight.
//
// On completion the phase returns to idle whether or not the request
// succeeded. A session-expired response additionally runs the sign-out
// hook. Completions apply in arrival order; a superseded request is not
// cancelled, the later response simply overwrites the earlier one.
func (o *Orchestrator) Polish(ctx context.Context, text string, style tone.Style) (string, error) {
	if strings.TrimSpace(text) == "" {
		o.setError(MsgEmptyText)
		return "", ErrEmptyText
	}
	if !o.canPolish() {
		o.setError(MsgNotEntitled)
		return "", ErrNotEntitled
	}

	o.mu.Lock()
	if o.phase == PhaseInFlight {
		o.mu.Unlock()
		return "", ErrInFlight
	}
	o.phase = PhaseInFlight
	o.lastErr = ""
	// lastResult intentionally kept until the new result arrives.
	o.mu.Unlock()

	polished, err := o.client.Polish(ctx, text, style, o.credentials())

	o.mu.Lock()
	o.phase = PhaseIdle
	if err != nil {
		o.lastErr = UserMessage(err)
	} else {
		o.lastResult = polished
		o.lastErr = ""
	}
	o.mu.Unlock()

	if err != nil {
		o.logger.Warn().Err(err).Str("tone", style.WireValue()).Msg("polish request failed")
		if IsSessionExpired(err) && o.onSessionExpired != nil {
			o.onSessionExpired()
		}
		return "", err
	}

	o.logger.Debug().Str("tone", style.WireValue()).Int("chars", len(polished)).Msg("polish request succeeded")
	return polished, nil
}

func (o *Orchestrator) setError(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = msg
}
