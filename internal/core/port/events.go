package port

import (
	"context"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
)

// EventPublisher fans auth lifecycle events out to downstream consumers.
// Publishing is best-effort: the orchestrator logs failures and moves on.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserActivated(ctx context.Context, event domain.UserActivatedEvent) error
	PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error
	PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error
	PublishPasswordReset(ctx context.Context, event domain.PasswordResetEvent) error
}
