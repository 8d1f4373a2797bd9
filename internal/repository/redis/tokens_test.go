package redis

import (
	"context"
	"testing"
	"time"
)

func TestTokenSlot_StoreAndValidate(t *testing.T) {
	client, server := newTestRedis(t)
	slot := NewTokenSlot(client, "refresh")

	ctx := context.Background()
	ttl := 24 * time.Hour

	if err := slot.Store(ctx, "user@example.com", "token-a", ttl); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	ok, err := slot.ValidateCurrent(ctx, "user@example.com", "token-a")
	if err != nil {
		t.Fatalf("ValidateCurrent returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected stored token to validate")
	}

	ok, err = slot.ValidateCurrent(ctx, "user@example.com", "token-b")
	if err != nil {
		t.Fatalf("ValidateCurrent returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatched token to fail validation")
	}

	remaining := server.TTL("refresh:user@example.com")
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}
}

func TestTokenSlot_StoreDisplacesPrevious(t *testing.T) {
	client, _ := newTestRedis(t)
	slot := NewTokenSlot(client, "refresh")

	ctx := context.Background()

	if err := slot.Store(ctx, "user@example.com", "token-a", time.Hour); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if err := slot.Store(ctx, "user@example.com", "token-b", time.Hour); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	ok, err := slot.ValidateCurrent(ctx, "user@example.com", "token-a")
	if err != nil {
		t.Fatalf("ValidateCurrent returned error: %v", err)
	}
	if ok {
		t.Fatalf("displaced token must no longer validate")
	}
}

func TestTokenSlot_Swap(t *testing.T) {
	client, server := newTestRedis(t)
	slot := NewTokenSlot(client, "refresh")

	ctx := context.Background()

	if err := slot.Store(ctx, "user@example.com", "token-a", time.Hour); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	swapped, err := slot.Swap(ctx, "user@example.com", "token-a", "token-b", time.Hour)
	if err != nil {
		t.Fatalf("Swap returned error: %v", err)
	}
	if !swapped {
		t.Fatalf("expected swap with matching token to succeed")
	}

	// Replaying the old token must fail after rotation.
	swapped, err = slot.Swap(ctx, "user@example.com", "token-a", "token-c", time.Hour)
	if err != nil {
		t.Fatalf("Swap returned error: %v", err)
	}
	if swapped {
		t.Fatalf("expected swap with stale token to fail")
	}

	ok, err := slot.ValidateCurrent(ctx, "user@example.com", "token-b")
	if err != nil {
		t.Fatalf("ValidateCurrent returned error: %v", err)
	}
	if !ok {
		t.Fatalf("rotated token must validate")
	}

	remaining := server.TTL("refresh:user@example.com")
	if remaining <= 0 || remaining > time.Hour {
		t.Fatalf("expected swap to re-arm ttl, got %v", remaining)
	}
}

func TestTokenSlot_ConsumeCurrent(t *testing.T) {
	client, _ := newTestRedis(t)
	slot := NewTokenSlot(client, "reset")

	ctx := context.Background()

	if err := slot.Store(ctx, "user@example.com", "reset-token", 15*time.Minute); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	consumed, err := slot.ConsumeCurrent(ctx, "user@example.com", "reset-token")
	if err != nil {
		t.Fatalf("ConsumeCurrent returned error: %v", err)
	}
	if !consumed {
		t.Fatalf("expected matching token to be consumed")
	}

	consumed, err = slot.ConsumeCurrent(ctx, "user@example.com", "reset-token")
	if err != nil {
		t.Fatalf("ConsumeCurrent returned error: %v", err)
	}
	if consumed {
		t.Fatalf("expected second consume to fail")
	}
}

func TestTokenSlot_Revoke(t *testing.T) {
	client, _ := newTestRedis(t)
	slot := NewTokenSlot(client, "refresh")

	ctx := context.Background()

	if err := slot.Store(ctx, "user@example.com", "token-a", time.Hour); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if err := slot.Revoke(ctx, "user@example.com"); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}

	ok, err := slot.ValidateCurrent(ctx, "user@example.com", "token-a")
	if err != nil {
		t.Fatalf("ValidateCurrent returned error: %v", err)
	}
	if ok {
		t.Fatalf("revoked token must not validate")
	}
}
