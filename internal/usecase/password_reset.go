package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/port"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/config"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/logger"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/security"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/repository"
)

// PasswordResetService owns the forgot/reset password flow. Reset tokens live
// in a single per-identity slot and are consumed with an atomic
// compare-and-delete, so each token redeems at most once.
type PasswordResetService struct {
	cfg          *config.AppConfig
	accounts     port.AccountStore
	resetSlots   port.TokenSlot
	refreshSlots port.TokenSlot
	tokens       *security.TokenService
	hasher       *security.PasswordHasher
	passwords    *security.PasswordValidator
	mail         port.MailDispatcher
	events       port.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewPasswordResetService constructs the password reset flow service.
func NewPasswordResetService(
	cfg *config.AppConfig,
	accounts port.AccountStore,
	resetSlots port.TokenSlot,
	refreshSlots port.TokenSlot,
	tokens *security.TokenService,
	hasher *security.PasswordHasher,
	passwords *security.PasswordValidator,
	mail port.MailDispatcher,
	events port.EventPublisher,
	log *zap.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		cfg:          cfg,
		accounts:     accounts,
		resetSlots:   resetSlots,
		refreshSlots: refreshSlots,
		tokens:       tokens,
		hasher:       hasher,
		passwords:    passwords,
		mail:         mail,
		events:       events,
		logger:       log,
		now:          time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *PasswordResetService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// ForgotPassword issues a short-lived reset token, stores it in the identity's
// slot (displacing any earlier token), and dispatches it out of band.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserWithEmailNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := s.tokens.Issue(user.Email, security.TokenTypeReset, map[string]any{"jti": uuid.NewString()}, s.cfg.JWT.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	if err := s.resetSlots.Store(ctx, email, token, s.cfg.JWT.ResetTokenTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	expiresAt := s.now().UTC().Add(s.cfg.JWT.ResetTokenTTL)
	if err := s.mail.SendPasswordReset(ctx, email, token, expiresAt); err != nil {
		s.logger.Error("dispatch reset mail", zap.Error(err), zap.String("email", logger.MaskEmail(email)))
	}

	return nil
}

// ResetPassword redeems a reset token and replaces the password. The token
// must pass signature/expiry checks, carry the reset type claim, and still
// occupy the identity's slot. Redeeming also revokes the outstanding refresh
// token, forcing every session to log in again with the new password.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Validate(token, "")
	if err != nil {
		return ErrResetTokenInvalid
	}
	if claims.TokenType != security.TokenTypeReset {
		return ErrResetTokenInvalid
	}

	if err := s.passwords.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	email := claims.Subject

	consumed, err := s.resetSlots.ConsumeCurrent(ctx, email, token)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if !consumed {
		return ErrTokenAlreadyUsed
	}

	user, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserWithEmailNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.now().UTC()
	if err := s.accounts.Save(ctx, *user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	if err := s.refreshSlots.Revoke(ctx, email); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	if s.events != nil {
		event := domain.PasswordResetEvent{
			EventID: uuid.NewString(),
			UserID:  user.ID,
			Email:   user.Email,
			ResetAt: user.UpdatedAt,
		}
		if err := s.events.PublishPasswordReset(ctx, event); err != nil {
			s.logger.Error("publish password reset event", zap.Error(err))
		}
	}

	s.logger.Info("password reset completed", zap.String("email", logger.MaskEmail(email)))
	return nil
}
