package usecase

import (
	"context"
	"testing"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
)

func TestUserStats(t *testing.T) {
	accounts := newStubAccountStore()
	accounts.put(domain.User{ID: "1", Email: "a@x.com", Status: domain.UserStatusActive})
	accounts.put(domain.User{ID: "2", Email: "b@x.com", Status: domain.UserStatusActive})
	accounts.put(domain.User{ID: "3", Email: "c@x.com", Status: domain.UserStatusPending})
	accounts.put(domain.User{ID: "4", Email: "d@x.com", Status: domain.UserStatusLocked})

	service := NewUserService(accounts)

	stats, err := service.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	if stats.Active != 2 || stats.Pending != 1 || stats.Locked != 1 || stats.Disabled != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Total != 4 {
		t.Fatalf("expected total 4, got %d", stats.Total)
	}
}
