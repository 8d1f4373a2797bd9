package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/port"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/logger"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/security"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/repository"
)

// TwoFactorEnrollment is handed back from Setup for the authenticator app.
type TwoFactorEnrollment struct {
	Secret          string
	ProvisioningURL string
}

// TwoFactorService manages TOTP enrollment. The secret is staged on the user
// row at setup but only honored at login after a code confirms the
// authenticator was actually provisioned.
type TwoFactorService struct {
	accounts port.AccountStore
	totp     *security.TOTPVerifier
	hasher   *security.PasswordHasher
	logger   *zap.Logger
	now      func() time.Time
}

// NewTwoFactorService constructs the 2FA enrollment service.
func NewTwoFactorService(
	accounts port.AccountStore,
	totp *security.TOTPVerifier,
	hasher *security.PasswordHasher,
	log *zap.Logger,
) *TwoFactorService {
	return &TwoFactorService{
		accounts: accounts,
		totp:     totp,
		hasher:   hasher,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *TwoFactorService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Setup generates a fresh secret and returns the otpauth:// provisioning URL.
// Re-running setup before confirmation replaces the staged secret.
func (s *TwoFactorService) Setup(ctx context.Context, email string) (*TwoFactorEnrollment, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}

	if user.TwoFactorEnabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}

	secret, err := s.totp.GenerateSecret(user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	user.TwoFactorSecret = secret
	user.UpdatedAt = s.now().UTC()
	if err := s.accounts.Save(ctx, *user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	return &TwoFactorEnrollment{
		Secret:          secret,
		ProvisioningURL: s.totp.ProvisioningURL(user.Email, secret),
	}, nil
}

// Confirm verifies the first code from the authenticator and enables 2FA.
func (s *TwoFactorService) Confirm(ctx context.Context, email, code string) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	if user.TwoFactorEnabled {
		return ErrTwoFactorAlreadyEnabled
	}
	if user.TwoFactorSecret == "" {
		return ErrTwoFactorSetupRequired
	}

	if !s.totp.Verify(user.TwoFactorSecret, code) {
		return ErrOtpInvalidOrExpired
	}

	user.TwoFactorEnabled = true
	user.UpdatedAt = s.now().UTC()
	if err := s.accounts.Save(ctx, *user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	s.logger.Info("two factor enabled", zap.String("email", logger.MaskEmail(user.Email)))
	return nil
}

// Disable turns 2FA off. Both the password and a currently valid code are
// required, so a stolen session alone cannot strip the second factor.
func (s *TwoFactorService) Disable(ctx context.Context, email, password, code string) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	if !user.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if !s.totp.Verify(user.TwoFactorSecret, code) {
		return ErrOtpInvalidOrExpired
	}

	user.TwoFactorEnabled = false
	user.TwoFactorSecret = ""
	user.UpdatedAt = s.now().UTC()
	if err := s.accounts.Save(ctx, *user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	s.logger.Info("two factor disabled", zap.String("email", logger.MaskEmail(user.Email)))
	return nil
}

func (s *TwoFactorService) findUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
