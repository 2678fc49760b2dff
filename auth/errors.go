package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidToken indicates the token is malformed or carries no
	// usable claims.
	ErrInvalidToken = errors.New("invalid token")
)
