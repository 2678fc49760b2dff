package polish

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for polish requests.
var (
	// ErrEmptyText indicates there was no text to polish. Resolved
	// locally; no request is sent.
	ErrEmptyText = errors.New("no text to polish")

	// ErrNotEntitled indicates the caller is neither signed in nor
	// carrying a BYOK key. Resolved locally; no request is sent.
	ErrNotEntitled = errors.New("not entitled to polish")

	// ErrSessionExpired indicates the service rejected the auth token.
	// The caller must sign out in addition to surfacing the message.
	ErrSessionExpired = errors.New("session expired")

	// ErrRateLimited indicates the hosted rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInFlight indicates a polish request is already in flight.
	ErrInFlight = errors.New("polish request already in flight")
)

// User-facing messages for the distinguished failures.
const (
	MsgEmptyText      = "No text to polish"
	MsgNotEntitled    = "Please sign in or set your own API key in Settings"
	MsgSessionExpired = "Session expired. Please sign in again."
	MsgRateLimited    = "Rate limit exceeded. Please wait a moment or use your own API key."
)

// APIError represents a non-success response from the polish service.
type APIError struct {
	// StatusCode is the HTTP status code returned.
	StatusCode int

	// Message is the error text, either from the response body or a
	// canned user-facing message.
	Message string

	// Endpoint is the path that was called.
	Endpoint string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("polish API error (%d) at %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap returns the underlying sentinel error based on status code.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrSessionExpired
	case 429:
		return ErrRateLimited
	default:
		return nil
	}
}

// IsSessionExpired reports whether the error is the distinguished
// session-expired failure.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// IsRateLimited reports whether the error is the distinguished
// rate-limited failure.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsInputError reports whether the error was resolved locally without a
// network call.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyText) || errors.Is(err, ErrNotEntitled)
}

// UserMessage maps an error to the message shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyText):
		return MsgEmptyText
	case errors.Is(err, ErrNotEntitled):
		return MsgNotEntitled
	case errors.Is(err, ErrSessionExpired):
		return MsgSessionExpired
	case errors.Is(err, ErrRateLimited):
		return MsgRateLimited
	default:
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return err.Error()
	}
}
