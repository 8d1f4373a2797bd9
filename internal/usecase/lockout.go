package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/port"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/config"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/logger"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/telemetry"
)

// LoginAttemptService enforces the escalating-backoff lockout policy. Failure
// counts live in the TTL store; the lock state itself lives on the user row,
// which stays authoritative when the counter has already expired.
type LoginAttemptService struct {
	cfg      config.LoginSettings
	attempts port.LoginAttemptStore
	accounts port.AccountStore
	events   port.EventPublisher
	metrics  *telemetry.Provider
	logger   *zap.Logger
	now      func() time.Time
}

// NewLoginAttemptService constructs the lockout policy service.
func NewLoginAttemptService(
	cfg config.LoginSettings,
	attempts port.LoginAttemptStore,
	accounts port.AccountStore,
	events port.EventPublisher,
	log *zap.Logger,
) *LoginAttemptService {
	return &LoginAttemptService{
		cfg:      cfg,
		attempts: attempts,
		accounts: accounts,
		events:   events,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *LoginAttemptService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithTelemetry attaches failure and lockout counters. A nil provider is a no-op.
func (s *LoginAttemptService) WithTelemetry(provider *telemetry.Provider) *LoginAttemptService {
	s.metrics = provider
	return s
}

// RecordFailure increments the per-identity failure counter and, at or past
// the attempt limit, locks the account for lockoutBase * multiplier^(count-max).
// Continued failures during an existing lockout extend the window further.
// A TTL-store outage fails the operation; it is never treated as zero failures.
func (s *LoginAttemptService) RecordFailure(ctx context.Context, user *domain.User) error {
	count, err := s.attempts.Increment(ctx, user.Email, s.cfg.AttemptWindow)
	if err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}

	user.FailedLoginAttempts = count
	user.UpdatedAt = s.now().UTC()
	s.metrics.LoginFailureInc()

	if count >= s.cfg.MaxAttempts {
		lockout := s.lockoutDuration(count)
		until := s.now().UTC().Add(lockout)
		user.Lock(until, count)
		s.metrics.AccountLockoutInc()

		s.logger.Warn("account locked",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Int("failed_attempts", count),
			zap.Time("locked_until", until),
		)

		if err := s.accounts.Save(ctx, *user); err != nil {
			return fmt.Errorf("persist locked account: %w", err)
		}

		if s.events != nil {
			event := domain.AccountLockedEvent{
				EventID:        uuid.NewString(),
				UserID:         user.ID,
				Email:          user.Email,
				FailedAttempts: count,
				LockedAt:       s.now().UTC(),
				LockedUntil:    until,
			}
			if err := s.events.PublishAccountLocked(ctx, event); err != nil {
				s.logger.Error("publish account locked event", zap.Error(err))
			}
		}

		return nil
	}

	if err := s.accounts.Save(ctx, *user); err != nil {
		return fmt.Errorf("persist failure count: %w", err)
	}

	return nil
}

// ResetOnSuccess clears the failure counter and restores a locked account to ACTIVE.
func (s *LoginAttemptService) ResetOnSuccess(ctx context.Context, user *domain.User) error {
	if err := s.attempts.Reset(ctx, user.Email); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}

	if user.Unlock() || user.FailedLoginAttempts != 0 {
		user.FailedLoginAttempts = 0
		user.UpdatedAt = s.now().UTC()
		if err := s.accounts.Save(ctx, *user); err != nil {
			return fmt.Errorf("persist unlocked account: %w", err)
		}
	}

	return nil
}

// ReleaseIfExpired transitions a LOCKED account whose window has elapsed back
// to ACTIVE. Returns true when the account is currently locked. Only the row
// mirror is cleared: the failure counter keeps its window TTL, so another
// wrong password after an expired lock escalates the next lockout instead of
// starting over. The counter only resets on successful login.
func (s *LoginAttemptService) ReleaseIfExpired(ctx context.Context, user *domain.User) (bool, error) {
	if user.Status != domain.UserStatusLocked {
		return false, nil
	}

	if !user.IsLockExpired(s.now().UTC()) {
		return true, nil
	}

	user.Unlock()
	user.UpdatedAt = s.now().UTC()
	if err := s.accounts.Save(ctx, *user); err != nil {
		return true, fmt.Errorf("persist unlocked account: %w", err)
	}

	return false, nil
}

func (s *LoginAttemptService) lockoutDuration(count int) time.Duration {
	d := s.cfg.LockoutBase
	for i := 0; i < count-s.cfg.MaxAttempts; i++ {
		d *= time.Duration(s.cfg.LockoutMultiplier)
	}
	return d
}
