// Package metadata is a small key/value store with optional per-key expiry,
// kept in the local SQLite database. The session token lives here.
package metadata

import (
	"context"
	"time"
)

// Item is a stored value. A zero ExpiresAt means the value never expires.
type Item struct {
	Value     []byte
	ExpiresAt time.Time
}

// Expired reports whether the item is past its expiry at now.
func (i Item) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

type Repository interface {
	// Get returns ok=false when the key is absent. Expiry is not checked here.
	Get(ctx context.Context, key string) (item Item, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	Delete(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Clear(ctx context.Context) error
}
