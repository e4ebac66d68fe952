package auth

import "errors"

// Token validation failures. The auth middleware turns every one of them into
// a 401; only ErrExpiredToken gets its own message.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrMissingToken     = errors.New("authentication token is missing")

	// ErrMissingOwner is a well-signed token whose uid claim is absent or not a UUID.
	ErrMissingOwner = errors.New("authentication token does not identify an owner")
)
