package usecase

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/config"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/security"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		App: config.AppSettings{
			Name: "expense-tracker",
			Env:  "test",
		},
		JWT: config.JWTSettings{
			SigningKey:      strings.Repeat("k", 32),
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
			ResetTokenTTL:   15 * time.Minute,
		},
		OTP: config.OTPSettings{
			Enabled:      true,
			Length:       6,
			TTL:          180 * time.Second,
			SentinelCode: "123456",
		},
		Login: config.LoginSettings{
			MaxAttempts:       5,
			AttemptWindow:     time.Hour,
			LockoutBase:       120 * time.Second,
			LockoutMultiplier: 2,
		},
	}
}

func testHasher(t *testing.T) *security.PasswordHasher {
	t.Helper()

	// Smallest parameters the hasher accepts, to keep tests fast.
	hasher, err := security.NewPasswordHasher(security.Argon2Config{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  8,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewPasswordHasher: %v", err)
	}
	return hasher
}

func testTokens(t *testing.T) *security.TokenService {
	t.Helper()

	tokens, err := security.NewTokenService([]byte(strings.Repeat("k", 32)), "expense-tracker")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func testLockout(t *testing.T, cfg *config.AppConfig, attempts *stubAttemptStore, accounts *stubAccountStore, events *stubEventPublisher) *LoginAttemptService {
	t.Helper()

	return NewLoginAttemptService(cfg.Login, attempts, accounts, events, zaptest.NewLogger(t))
}
