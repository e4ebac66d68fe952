package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// ContextKey is the type of the request context keys set by the middleware.
type ContextKey string

const (
	// OwnerIDContextKey holds the authenticated owner's uuid.UUID.
	OwnerIDContextKey ContextKey = "ownerID"

	// TraceIDKey holds the request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// WithOwnerID returns a copy of ctx carrying the owner ID.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, OwnerIDContextKey, ownerID)
}

// OwnerIDFromContext returns the owner ID set by the auth middleware.
// The boolean is false when the context carries no usable ID.
func OwnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	ownerID, ok := ctx.Value(OwnerIDContextKey).(uuid.UUID)
	if !ok || ownerID == uuid.Nil {
		return uuid.Nil, false
	}
	return ownerID, true
}

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" if none is set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 16 random bytes hex encoded. If the system random
// source fails it falls back to a time based ID, which is still unique per
// request but not unpredictable.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err == nil && n == TraceIDLength {
		return hex.EncodeToString(b)
	}

	now := time.Now()
	binary.BigEndian.PutUint64(b[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint64(b[8:], uint64(now.Unix())^uint64(now.Nanosecond()))
	return hex.EncodeToString(b)
}
