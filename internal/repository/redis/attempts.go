package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/port"
)

const defaultAttemptPrefix = "login_attempts"

// LoginAttemptStore counts consecutive failed logins per identity in Redis.
// The TTL is refreshed on every failure, so the counter only resets after a
// quiet period or an explicit Reset.
type LoginAttemptStore struct {
	client *red.Client
	prefix string
}

// NewLoginAttemptStore constructs an attempt store with the provided Redis client and key prefix.
func NewLoginAttemptStore(client *red.Client, keyPrefix string) *LoginAttemptStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultAttemptPrefix
	}

	return &LoginAttemptStore{client: client, prefix: prefix}
}

// Increment bumps the failure counter, re-applies the TTL, and returns the new count.
func (s *LoginAttemptStore) Increment(ctx context.Context, identity string, ttl time.Duration) (int, error) {
	key, err := s.key(identity)
	if err != nil {
		return 0, err
	}
	if ttl <= 0 {
		return 0, errors.New("ttl must be positive")
	}

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr login attempts: %w", err)
	}

	return int(incr.Val()), nil
}

// Count returns the current failure count, zero when no counter exists.
func (s *LoginAttemptStore) Count(ctx context.Context, identity string) (int, error) {
	key, err := s.key(identity)
	if err != nil {
		return 0, err
	}

	count, err := s.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get login attempts: %w", err)
	}

	return count, nil
}

// Reset clears the failure counter for the identity.
func (s *LoginAttemptStore) Reset(ctx context.Context, identity string) error {
	key, err := s.key(identity)
	if err != nil {
		return err
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del login attempts: %w", err)
	}

	return nil
}

func (s *LoginAttemptStore) key(identity string) (string, error) {
	trimmed := strings.TrimSpace(identity)
	if trimmed == "" {
		return "", errors.New("identity is required")
	}
	return fmt.Sprintf("%s:%s", s.prefix, trimmed), nil
}

var _ port.LoginAttemptStore = (*LoginAttemptStore)(nil)
