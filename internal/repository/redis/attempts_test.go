package redis

import (
	"context"
	"testing"
	"time"
)

func TestLoginAttemptStore_IncrementAndCount(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewLoginAttemptStore(client, "login_attempts")

	ctx := context.Background()
	ttl := time.Hour

	for want := 1; want <= 3; want++ {
		count, err := store.Increment(ctx, "user@example.com", ttl)
		if err != nil {
			t.Fatalf("Increment returned error: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d, got %d", want, count)
		}
	}

	count, err := store.Count(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}

	remaining := server.TTL("login_attempts:user@example.com")
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}
}

func TestLoginAttemptStore_CountMissingKey(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewLoginAttemptStore(client, "login_attempts")

	count, err := store.Count(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero for missing counter, got %d", count)
	}
}

func TestLoginAttemptStore_Reset(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewLoginAttemptStore(client, "login_attempts")

	ctx := context.Background()

	if _, err := store.Increment(ctx, "user@example.com", time.Hour); err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}
	if err := store.Reset(ctx, "user@example.com"); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}

	count, err := store.Count(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected count to reset to zero, got %d", count)
	}
}

func TestLoginAttemptStore_WindowExpiry(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewLoginAttemptStore(client, "login_attempts")

	ctx := context.Background()

	if _, err := store.Increment(ctx, "user@example.com", time.Hour); err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}

	server.FastForward(2 * time.Hour)

	count, err := store.Count(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected counter to expire, got %d", count)
	}
}
