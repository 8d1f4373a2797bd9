package usecase

import (
	"context"
	"fmt"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/port"
)

// UserStats aggregates account counts per status for the admin surface.
type UserStats struct {
	Pending  int64
	Active   int64
	Locked   int64
	Disabled int64
	Total    int64
}

// UserService serves read-only account views outside the auth flows.
type UserService struct {
	accounts port.AccountStore
}

// NewUserService constructs the user query service.
func NewUserService(accounts port.AccountStore) *UserService {
	return &UserService{accounts: accounts}
}

// Stats counts users per lifecycle status.
func (s *UserService) Stats(ctx context.Context) (*UserStats, error) {
	stats := &UserStats{}

	for _, entry := range []struct {
		status domain.UserStatus
		target *int64
	}{
		{domain.UserStatusPending, &stats.Pending},
		{domain.UserStatusActive, &stats.Active},
		{domain.UserStatusLocked, &stats.Locked},
		{domain.UserStatusDisabled, &stats.Disabled},
	} {
		count, err := s.accounts.CountByStatus(ctx, entry.status)
		if err != nil {
			return nil, fmt.Errorf("count users with status %s: %w", entry.status, err)
		}
		*entry.target = count
		stats.Total += count
	}

	return stats, nil
}
