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

// compareAndSwap replaces the key's value with ARGV[2] only when the current
// value matches ARGV[1], keeping rotation safe under concurrent refreshes.
var compareAndSwap = red.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// TokenSlot keeps a single live token per identity in Redis. Storing a new
// token overwrites the previous one, which caps each identity at one session.
type TokenSlot struct {
	client *red.Client
	prefix string
}

// NewTokenSlot constructs a token slot with the provided Redis client and key prefix.
func NewTokenSlot(client *red.Client, keyPrefix string) *TokenSlot {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = "token"
	}

	return &TokenSlot{client: client, prefix: prefix}
}

// Store writes the token for the identity, displacing any token already held.
func (t *TokenSlot) Store(ctx context.Context, identity, token string, ttl time.Duration) error {
	key, err := t.key(identity)
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is required")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	if err := t.client.Set(ctx, key, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis store token: %w", err)
	}

	return nil
}

// ValidateCurrent reports whether the candidate matches the token currently in the slot.
func (t *TokenSlot) ValidateCurrent(ctx context.Context, identity, candidate string) (bool, error) {
	key, err := t.key(identity)
	if err != nil {
		return false, err
	}

	current, err := t.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get token: %w", err)
	}

	return current == candidate, nil
}

// Swap atomically replaces the slot with next when it currently holds expected.
func (t *TokenSlot) Swap(ctx context.Context, identity, expected, next string, ttl time.Duration) (bool, error) {
	key, err := t.key(identity)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(next) == "" {
		return false, errors.New("next token is required")
	}
	if ttl <= 0 {
		return false, errors.New("ttl must be positive")
	}

	swapped, err := compareAndSwap.Run(ctx, t.client, []string{key}, expected, next, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis swap token: %w", err)
	}

	return swapped == 1, nil
}

// ConsumeCurrent atomically deletes the slot when it holds the candidate.
func (t *TokenSlot) ConsumeCurrent(ctx context.Context, identity, candidate string) (bool, error) {
	key, err := t.key(identity)
	if err != nil {
		return false, err
	}

	deleted, err := compareAndDelete.Run(ctx, t.client, []string{key}, candidate).Int()
	if err != nil {
		return false, fmt.Errorf("redis consume token: %w", err)
	}

	return deleted == 1, nil
}

// Revoke drops whatever token the slot currently holds.
func (t *TokenSlot) Revoke(ctx context.Context, identity string) error {
	key, err := t.key(identity)
	if err != nil {
		return err
	}

	if err := t.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis revoke token: %w", err)
	}

	return nil
}

func (t *TokenSlot) key(identity string) (string, error) {
	trimmed := strings.TrimSpace(identity)
	if trimmed == "" {
		return "", errors.New("identity is required")
	}
	return fmt.Sprintf("%s:%s", t.prefix, trimmed), nil
}

var _ port.TokenSlot = (*TokenSlot)(nil)
