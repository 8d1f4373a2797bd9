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

const defaultOTPPrefix = "otp"

// compareAndDelete removes the key only when its value matches the candidate,
// so a code observed by one caller cannot be redeemed again by another.
var compareAndDelete = red.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OtpLedger stores single-use activation codes in Redis with a TTL.
type OtpLedger struct {
	client *red.Client
	prefix string
}

// NewOtpLedger constructs an OTP ledger with the provided Redis client and key prefix.
func NewOtpLedger(client *red.Client, keyPrefix string) *OtpLedger {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultOTPPrefix
	}

	return &OtpLedger{client: client, prefix: prefix}
}

// Put stores a code for the identity, replacing any code already held.
func (l *OtpLedger) Put(ctx context.Context, identity, code string, ttl time.Duration) error {
	key, err := l.key(identity)
	if err != nil {
		return err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("code is required")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	if err := l.client.Set(ctx, key, code, ttl).Err(); err != nil {
		return fmt.Errorf("redis set otp: %w", err)
	}

	return nil
}

// Consume atomically deletes the stored code when it matches the candidate.
func (l *OtpLedger) Consume(ctx context.Context, identity, candidate string) (bool, error) {
	key, err := l.key(identity)
	if err != nil {
		return false, err
	}

	deleted, err := compareAndDelete.Run(ctx, l.client, []string{key}, candidate).Int()
	if err != nil {
		return false, fmt.Errorf("redis consume otp: %w", err)
	}

	return deleted == 1, nil
}

// Exists reports whether an unexpired code is held for the identity.
func (l *OtpLedger) Exists(ctx context.Context, identity string) (bool, error) {
	key, err := l.key(identity)
	if err != nil {
		return false, err
	}

	count, err := l.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists otp: %w", err)
	}

	return count > 0, nil
}

func (l *OtpLedger) key(identity string) (string, error) {
	trimmed := strings.TrimSpace(identity)
	if trimmed == "" {
		return "", errors.New("identity is required")
	}
	return fmt.Sprintf("%s:%s", l.prefix, trimmed), nil
}

var _ port.OtpLedger = (*OtpLedger)(nil)
