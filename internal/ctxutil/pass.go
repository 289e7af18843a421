// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

// PassIDKey is the context key for the reconciliation pass ID.
type PassIDKey struct{}

// NewPassID returns a time-ordered (UUIDv7) identifier for a pass.
func NewPassID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// WithPassID returns a context with the pass ID embedded.
func WithPassID(ctx context.Context, passID string) context.Context {
	return context.WithValue(ctx, PassIDKey{}, passID)
}

// PassIDFromContext returns the pass ID from context, or empty string if not set.
func PassIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(PassIDKey{}).(string); ok {
		return v
	}
	return ""
}

// EnsurePassID returns ctx unchanged if it already carries a pass ID,
// otherwise a child context with a fresh one.
func EnsurePassID(ctx context.Context) (context.Context, string) {
	if id := PassIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := NewPassID()
	return WithPassID(ctx, id), id
}
