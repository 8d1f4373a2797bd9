package port

import (
	"context"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
)

// AccountStore exposes the durable User persistence the auth core depends on.
// Save is an idempotent upsert of the full row; the core never requires
// cross-row transactions.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user domain.User) error
	CountByStatus(ctx context.Context, status domain.UserStatus) (int64, error)
}
