package session

import (
	"context"
	"time"
)

// RevocationStore records tokens that must be rejected before their
// natural expiry. Entries expire on their own once the token would
// have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, remaining time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// KeyValue is the expiring key-value service a RevocationStore is
// built on.
type KeyValue interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}
