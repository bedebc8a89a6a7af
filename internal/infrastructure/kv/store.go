// Package kv provides the expiring key-value backends that hold OTP entries
// and resend cooldowns.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrMissing is returned when a key is absent or already expired.
var ErrMissing = errors.New("kv: key missing")

// Store is a string-keyed byte store where every entry carries a TTL.
// Writes to the same key are last-writer-wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// TTL returns the time left before key expires, or ErrMissing.
	TTL(ctx context.Context, key string) (time.Duration, error)
	Delete(ctx context.Context, key string) error
	// Incr atomically adds one to the counter at key, creating it at 1, and
	// sets its TTL. It returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
