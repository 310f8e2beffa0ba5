package repository

import (
	"context"
	"time"
)

// StateStore abstracts ephemeral key-value state: per-event assignment locks
// and the revoked-session denylist.
// Implementations: Redis (production) or in-memory (local dev / single instance).
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// CompareAndDelete removes key only while it still holds value.
	CompareAndDelete(ctx context.Context, key string, value []byte) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}
