package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"

	"authcore/internal/logger"
)

const (
	revokedMarker     = "revoked"
	defaultMaxRevokes = 3
)

// RedisKeyValue adapts a go-redis client to KeyValue.
type RedisKeyValue struct {
	client redis.UniversalClient
}

func NewRedisKeyValue(client redis.UniversalClient) *RedisKeyValue {
	return &RedisKeyValue{client: client}
}

func (r *RedisKeyValue) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKeyValue) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// KVRevocationStore keeps revoked tokens in a KeyValue under a
// SHA-256 of the raw token, so keys have a fixed size and raw tokens
// never sit in the store.
type KVRevocationStore struct {
	kv       KeyValue
	prefix   string
	maxTries uint
	backoff  func() backoff.BackOff
}

type RevocationOption func(*KVRevocationStore)

// WithRevokeRetries bounds how many times a failed revoke is attempted.
func WithRevokeRetries(tries uint) RevocationOption {
	return func(s *KVRevocationStore) {
		if tries > 0 {
			s.maxTries = tries
		}
	}
}

// WithRevokeBackOff overrides the retry schedule.
func WithRevokeBackOff(b func() backoff.BackOff) RevocationOption {
	return func(s *KVRevocationStore) {
		s.backoff = b
	}
}

func NewKVRevocationStore(kv KeyValue, opts ...RevocationOption) *KVRevocationStore {
	s := &KVRevocationStore{
		kv:       kv,
		prefix:   "revoked:",
		maxTries: defaultMaxRevokes,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = 500 * time.Millisecond
			return b
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisRevocationStore is the production wiring: revocations in Redis.
func NewRedisRevocationStore(client redis.UniversalClient, opts ...RevocationOption) *KVRevocationStore {
	return NewKVRevocationStore(NewRedisKeyValue(client), opts...)
}

func (s *KVRevocationStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + hex.EncodeToString(sum[:])
}

// Revoke marks token as revoked for the remaining lifetime. SET with a
// TTL is idempotent, so failed attempts are retried.
func (s *KVRevocationStore) Revoke(ctx context.Context, token string, remaining time.Duration) error {
	if token == "" || remaining <= 0 {
		return nil
	}

	key := s.key(token)
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, s.kv.Set(ctx, key, revokedMarker, remaining)
	},
		backoff.WithBackOff(s.backoff()),
		backoff.WithMaxTries(s.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("revocation write failed, retrying", map[string]any{
				"error": err.Error(),
				"retry": next.String(),
			})
		}),
	)
	if err != nil {
		return fmt.Errorf("session: revoke: %w", err)
	}
	return nil
}

func (s *KVRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	revoked, err := s.kv.Exists(ctx, s.key(token))
	if err != nil {
		return false, fmt.Errorf("session: revocation lookup: %w", err)
	}
	return revoked, nil
}
