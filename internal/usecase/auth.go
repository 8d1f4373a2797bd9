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

// TokenPair is the bearer token payload returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// LoginResult bundles the issued tokens with a sanitized user summary.
type LoginResult struct {
	Tokens TokenPair
	User   domain.User
}

// AuthService coordinates login and refresh-token rotation. At most one
// refresh token is live per identity: the slot store overwrites on login and
// compare-and-swaps on rotation.
type AuthService struct {
	cfg          *config.AppConfig
	accounts     port.AccountStore
	refreshSlots port.TokenSlot
	tokens       *security.TokenService
	hasher       *security.PasswordHasher
	totp         *security.TOTPVerifier
	lockout      *LoginAttemptService
	events       port.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService constructs the authentication flow service.
func NewAuthService(
	cfg *config.AppConfig,
	accounts port.AccountStore,
	refreshSlots port.TokenSlot,
	tokens *security.TokenService,
	hasher *security.PasswordHasher,
	totp *security.TOTPVerifier,
	lockout *LoginAttemptService,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		cfg:          cfg,
		accounts:     accounts,
		refreshSlots: refreshSlots,
		tokens:       tokens,
		hasher:       hasher,
		totp:         totp,
		lockout:      lockout,
		events:       events,
		logger:       log,
		now:          time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *AuthService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Login validates credentials and the optional second factor, then issues an
// access/refresh pair. The refresh token displaces any previously stored one.
func (s *AuthService) Login(ctx context.Context, email, password, totpCode string) (*LoginResult, error) {
	email = normalizeEmail(email)

	user, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	locked, err := s.lockout.ReleaseIfExpired(ctx, user)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, ErrAccountTemporarilyLocked
	}

	switch user.Status {
	case domain.UserStatusActive:
	case domain.UserStatusDisabled:
		return nil, ErrAccountDisabled
	default:
		return nil, ErrAccountNotActivated
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		if err := s.lockout.RecordFailure(ctx, user); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	usedTOTP := false
	if user.TwoFactorEnabled {
		if strings.TrimSpace(totpCode) == "" {
			return nil, ErrOtpRequired
		}
		if !s.totp.Verify(user.TwoFactorSecret, totpCode) {
			return nil, ErrOtpInvalidOrExpired
		}
		usedTOTP = true
	}

	if err := s.lockout.ResetOnSuccess(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(*user)
	if err != nil {
		return nil, err
	}

	if err := s.refreshSlots.Store(ctx, email, pair.RefreshToken, s.cfg.JWT.RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if s.events != nil {
		event := domain.UserLoggedInEvent{
			EventID:    uuid.NewString(),
			UserID:     user.ID,
			Email:      user.Email,
			LoggedInAt: s.now().UTC(),
			UsedTOTP:   usedTOTP,
		}
		if err := s.events.PublishUserLoggedIn(ctx, event); err != nil {
			s.logger.Error("publish user logged in event", zap.Error(err))
		}
	}

	s.logger.Info("user logged in",
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.Bool("used_totp", usedTOTP),
	)

	return &LoginResult{Tokens: *pair, User: user.Sanitized()}, nil
}

// Refresh rotates a refresh token: the presented token must carry the refresh
// type claim and still occupy the identity's slot. Rotation is a single
// compare-and-swap, so a token wins at most one rotation even under
// concurrent refresh attempts.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken, "")
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	if claims.TokenType != security.TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}

	email := claims.Subject

	user, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	// A refresh must not outlive the account state: disabled and locked
	// accounts stop minting access tokens even with a valid slot token.
	locked, err := s.lockout.ReleaseIfExpired(ctx, user)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, ErrAccountTemporarilyLocked
	}

	switch user.Status {
	case domain.UserStatusActive:
	case domain.UserStatusDisabled:
		return nil, ErrAccountDisabled
	default:
		return nil, ErrAccountNotActivated
	}

	pair, err := s.issuePair(*user)
	if err != nil {
		return nil, err
	}

	swapped, err := s.refreshSlots.Swap(ctx, email, refreshToken, pair.RefreshToken, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !swapped {
		return nil, ErrRefreshTokenInvalid
	}

	return pair, nil
}

// CurrentUser returns the sanitized account for an authenticated subject.
func (s *AuthService) CurrentUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *AuthService) issuePair(user domain.User) (*TokenPair, error) {
	extra := map[string]any{
		"uid":  user.ID,
		"role": string(user.Role),
	}

	access, err := s.tokens.Issue(user.Email, security.TokenTypeAccess, extra, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.tokens.Issue(user.Email, security.TokenTypeRefresh, map[string]any{"jti": uuid.NewString()}, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenTTL.Seconds()),
	}, nil
}
