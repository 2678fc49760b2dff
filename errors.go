package noteflow

import "errors"

// Sentinel errors returned by Coordinator operations.
var (
	// ErrNothingToSave indicates Save was called with an empty transcript.
	ErrNothingToSave = errors.New("noteflow: nothing to save")

	// ErrPolishInFlight indicates an operation cannot proceed while a
	// polish request is outstanding.
	ErrPolishInFlight = errors.New("noteflow: polish request in flight")
)
