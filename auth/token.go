package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the service token's claim set: subject is the user ID,
// plus the registered expiry.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// ParseClaims decodes the service token's claims without verifying the
// signature. The client never holds the signing secret; verification is
// the service's job. Used for advisory inspection only.
func ParseClaims(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenExpiry returns the token's expiry time, if the token parses and
// carries one.
func TokenExpiry(token string) (time.Time, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalidToken
	}
	return claims.ExpiresAt.Time, nil
}
