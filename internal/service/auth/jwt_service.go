// Package auth verifies the bearer tokens that identify the owner of every
// request. Accounts and sign-in live in a separate identity service; this
// package only checks HMAC signed tokens issued with a shared secret.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations on JWT access tokens.
type JWTService interface {
	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrMissingOwner or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateToken creates a signed token for ownerID valid for lifetime.
	// It is used by the developer CLI and by tests.
	GenerateToken(ctx context.Context, ownerID uuid.UUID, lifetime time.Duration) (string, error)
}

// Claims represents the verified content of a token.
type Claims struct {
	// OwnerID is the caller identity every store query is scoped to.
	OwnerID   uuid.UUID `json:"uid"`
	Subject   string    `json:"sub,omitempty"`
	Issuer    string    `json:"iss,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
