// Package codes provides the short-lived key-value store backing
// CAPTCHA answers, SMS codes, and session records.
package codes

import (
	"context"
	"errors"
	"time"
)

// Key prefixes namespace the three kinds of entries sharing one store.
const (
	ImagePrefix   = "img:"
	SmsPrefix     = "sms:"
	SessionPrefix = "session:"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("code not found")

// Store is a key-value store with per-key expiration. Writes for an
// existing key overwrite the previous value and reset the TTL.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
