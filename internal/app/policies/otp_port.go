package policies

import (
	"context"
	"errors"
	"time"
)

// ErrCodeNotFound is returned when no code exists for the key or it expired.
var ErrCodeNotFound = errors.New("otp: code not found or expired")

// CodeStore keeps one-time codes keyed by phone number with an explicit TTL.
// Implementations must evict on expiry; a bare process map is not acceptable
// when running more than one instance.
type CodeStore interface {
	Put(ctx context.Context, key, code string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
