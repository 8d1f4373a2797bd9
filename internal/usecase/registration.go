package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// RegistrationService owns account creation and OTP activation. Registration
// never issues tokens; a fresh account must log in explicitly.
type RegistrationService struct {
	cfg       *config.AppConfig
	accounts  port.AccountStore
	otp       port.OtpLedger
	hasher    *security.PasswordHasher
	passwords *security.PasswordValidator
	mail      port.MailDispatcher
	events    port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs the registration flow service.
func NewRegistrationService(
	cfg *config.AppConfig,
	accounts port.AccountStore,
	otp port.OtpLedger,
	hasher *security.PasswordHasher,
	passwords *security.PasswordValidator,
	mail port.MailDispatcher,
	events port.EventPublisher,
	log *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		cfg:       cfg,
		accounts:  accounts,
		otp:       otp,
		hasher:    hasher,
		passwords: passwords,
		mail:      mail,
		events:    events,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *RegistrationService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Register creates a PENDING account and dispatches an activation code. With
// OTP gating off the account activates immediately. Code storage and mail
// dispatch failures are logged and swallowed; account creation still succeeds.
func (s *RegistrationService) Register(ctx context.Context, email, password, fullName, phone string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	if err := s.passwords.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyUsed
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Status:       domain.UserStatusPending,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if trimmed := strings.TrimSpace(phone); trimmed != "" {
		user.Phone = &trimmed
	}
	if !s.cfg.OTP.Enabled {
		user.Status = domain.UserStatusActive
	}

	if err := s.accounts.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, fmt.Errorf("save user: %w", err)
	}

	otpIssued := false
	if s.cfg.OTP.Enabled {
		otpIssued = s.issueOTP(ctx, email)
	}

	if s.events != nil {
		event := domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			Email:        user.Email,
			Status:       string(user.Status),
			RegisteredAt: now,
			OTPIssued:    otpIssued,
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			s.logger.Error("publish user registered event", zap.Error(err))
		}
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// VerifyOtp redeems an activation code and moves the account to ACTIVE. With
// OTP gating off the configured sentinel code is accepted as a fallback.
func (s *RegistrationService) VerifyOtp(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)

	user, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserWithEmailNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.Status == domain.UserStatusActive {
		return ErrOtpAlreadyVerified
	}

	consumed, err := s.otp.Consume(ctx, email, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if !consumed && !s.cfg.OTP.Enabled && strings.TrimSpace(code) == s.cfg.OTP.SentinelCode {
		consumed = true
	}
	if !consumed {
		return ErrOtpInvalidOrExpired
	}

	user.Status = domain.UserStatusActive
	user.UpdatedAt = s.now().UTC()
	if err := s.accounts.Save(ctx, *user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	if s.events != nil {
		event := domain.UserActivatedEvent{
			EventID:     uuid.NewString(),
			UserID:      user.ID,
			Email:       user.Email,
			ActivatedAt: user.UpdatedAt,
		}
		if err := s.events.PublishUserActivated(ctx, event); err != nil {
			s.logger.Error("publish user activated event", zap.Error(err))
		}
	}

	return nil
}

// ResendOtp regenerates the activation code, displacing the previous one.
func (s *RegistrationService) ResendOtp(ctx context.Context, email string) error {
	if !s.cfg.OTP.Enabled {
		return ErrOtpFeatureDisabled
	}

	email = normalizeEmail(email)

	user, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.Status != domain.UserStatusPending {
		return ErrOtpAlreadyVerified
	}

	code, err := security.GenerateNumericCode(s.cfg.OTP.Length)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	if err := s.otp.Put(ctx, email, code, s.cfg.OTP.TTL); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	s.dispatchOTP(ctx, email, code)
	return nil
}

// issueOTP generates, stores and dispatches an activation code. Returns
// whether a code was actually stored. Errors are logged, never propagated:
// registration must not fail because the code could not be delivered.
func (s *RegistrationService) issueOTP(ctx context.Context, email string) bool {
	code, err := security.GenerateNumericCode(s.cfg.OTP.Length)
	if err != nil {
		s.logger.Error("generate otp", zap.Error(err), zap.String("email", logger.MaskEmail(email)))
		return false
	}

	if err := s.otp.Put(ctx, email, code, s.cfg.OTP.TTL); err != nil {
		s.logger.Error("store otp", zap.Error(err), zap.String("email", logger.MaskEmail(email)))
		return false
	}

	s.dispatchOTP(ctx, email, code)
	return true
}

func (s *RegistrationService) dispatchOTP(ctx context.Context, email, code string) {
	expiresAt := s.now().UTC().Add(s.cfg.OTP.TTL)
	if err := s.mail.SendOTP(ctx, email, code, expiresAt); err != nil {
		s.logger.Error("dispatch otp mail", zap.Error(err), zap.String("email", logger.MaskEmail(email)))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
