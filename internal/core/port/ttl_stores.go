package port

import (
	"context"
	"time"
)

// OtpLedger stores single-use, TTL-bound one-time codes keyed by identity.
// Put overwrites any code already held for the identity.
type OtpLedger interface {
	Put(ctx context.Context, identity, code string, ttl time.Duration) error
	// Consume atomically compares the candidate against the stored code and
	// deletes it on match, so a code can never be redeemed twice.
	Consume(ctx context.Context, identity, candidate string) (bool, error)
	Exists(ctx context.Context, identity string) (bool, error)
}

// LoginAttemptStore tracks consecutive failed logins per identity with a
// sliding inactivity TTL.
type LoginAttemptStore interface {
	// Increment bumps the failure counter and returns the new count. The TTL
	// is re-applied on every increment.
	Increment(ctx context.Context, identity string, ttl time.Duration) (int, error)
	Count(ctx context.Context, identity string) (int, error)
	Reset(ctx context.Context, identity string) error
}

// TokenSlot is a single-slot, per-identity token store: storing a new value
// overwrites the previous one, so at most one token is honored per identity.
type TokenSlot interface {
	Store(ctx context.Context, identity, token string, ttl time.Duration) error
	// ValidateCurrent reports whether the candidate exactly matches the
	// currently stored token.
	ValidateCurrent(ctx context.Context, identity, candidate string) (bool, error)
	// Swap atomically replaces the stored token with next when it currently
	// equals expected. Returns false without writing when the comparison fails.
	Swap(ctx context.Context, identity, expected, next string, ttl time.Duration) (bool, error)
	// ConsumeCurrent atomically deletes the stored token when it equals the
	// candidate, returning whether the delete happened.
	ConsumeCurrent(ctx context.Context, identity, candidate string) (bool, error)
	Revoke(ctx context.Context, identity string) error
}
