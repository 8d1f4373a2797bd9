package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs auth.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"email":      event.Email,
		"status":     event.Status,
		"otp_issued": event.OTPIssued,
	}
	p.logEvent("auth.user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishUserActivated logs auth.user.activated events.
func (p *StubPublisher) PublishUserActivated(_ context.Context, event domain.UserActivatedEvent) error {
	payload := map[string]any{
		"email": event.Email,
	}
	p.logEvent("auth.user.activated", event.UserID, event.ActivatedAt, payload)
	return nil
}

// PublishAccountLocked logs auth.account.locked events.
func (p *StubPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	payload := map[string]any{
		"email":           event.Email,
		"failed_attempts": event.FailedAttempts,
		"locked_until":    event.LockedUntil,
	}
	p.logEvent("auth.account.locked", event.UserID, event.LockedAt, payload)
	return nil
}

// PublishUserLoggedIn logs auth.user.logged_in events.
func (p *StubPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	payload := map[string]any{
		"email":     event.Email,
		"used_totp": event.UsedTOTP,
	}
	p.logEvent("auth.user.logged_in", event.UserID, event.LoggedInAt, payload)
	return nil
}

// PublishPasswordReset logs auth.user.password_reset events.
func (p *StubPublisher) PublishPasswordReset(_ context.Context, event domain.PasswordResetEvent) error {
	payload := map[string]any{
		"email": event.Email,
	}
	p.logEvent("auth.user.password_reset", event.UserID, event.ResetAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
