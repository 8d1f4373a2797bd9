package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap/zaptest"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/security"
)

type twoFactorFixture struct {
	service  *TwoFactorService
	accounts *stubAccountStore
	totp     *security.TOTPVerifier
	hasher   *security.PasswordHasher
}

func newTwoFactorFixture(t *testing.T) *twoFactorFixture {
	t.Helper()

	accounts := newStubAccountStore()
	verifier := security.NewTOTPVerifier("expense-tracker")
	hasher := testHasher(t)

	service := NewTwoFactorService(accounts, verifier, hasher, zaptest.NewLogger(t))

	return &twoFactorFixture{
		service:  service,
		accounts: accounts,
		totp:     verifier,
		hasher:   hasher,
	}
}

func (f *twoFactorFixture) seedUser(t *testing.T, password string, mutate func(*domain.User)) domain.User {
	t.Helper()

	hash, err := f.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := domain.User{
		ID:           "user-1",
		Email:        "a@x.com",
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		Role:         domain.RoleUser,
	}
	if mutate != nil {
		mutate(&user)
	}
	f.accounts.put(user)
	return user
}

func TestTwoFactorEnrollmentLifecycle(t *testing.T) {
	f := newTwoFactorFixture(t)
	f.seedUser(t, "P@ssw0rd!", nil)

	ctx := context.Background()

	enrollment, err := f.service.Setup(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if enrollment.Secret == "" {
		t.Fatal("expected a generated secret")
	}
	if !strings.HasPrefix(enrollment.ProvisioningURL, "otpauth://totp/") {
		t.Fatalf("unexpected provisioning url %s", enrollment.ProvisioningURL)
	}
	if !strings.Contains(enrollment.ProvisioningURL, enrollment.Secret) {
		t.Fatal("provisioning url must embed the secret")
	}

	stored, _ := f.accounts.get("a@x.com")
	if stored.TwoFactorEnabled {
		t.Fatal("setup alone must not enable 2fa")
	}
	if stored.TwoFactorSecret != enrollment.Secret {
		t.Fatal("staged secret must be persisted")
	}

	now := time.Now()
	f.totp.WithClock(func() time.Time { return now })
	code, err := totp.GenerateCode(enrollment.Secret, now)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	if err := f.service.Confirm(ctx, "a@x.com", code); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}

	stored, _ = f.accounts.get("a@x.com")
	if !stored.TwoFactorEnabled {
		t.Fatal("confirmation must enable 2fa")
	}

	if err := f.service.Disable(ctx, "a@x.com", "P@ssw0rd!", code); err != nil {
		t.Fatalf("Disable returned error: %v", err)
	}

	stored, _ = f.accounts.get("a@x.com")
	if stored.TwoFactorEnabled || stored.TwoFactorSecret != "" {
		t.Fatalf("disable must clear enrollment, got %+v", stored)
	}
}

func TestTwoFactorConfirmWrongCode(t *testing.T) {
	f := newTwoFactorFixture(t)
	f.seedUser(t, "P@ssw0rd!", nil)

	ctx := context.Background()
	if _, err := f.service.Setup(ctx, "a@x.com"); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	if err := f.service.Confirm(ctx, "a@x.com", "000000"); !errors.Is(err, ErrOtpInvalidOrExpired) {
		t.Fatalf("expected ErrOtpInvalidOrExpired, got %v", err)
	}

	stored, _ := f.accounts.get("a@x.com")
	if stored.TwoFactorEnabled {
		t.Fatal("wrong code must not enable 2fa")
	}
}

func TestTwoFactorConfirmWithoutSetup(t *testing.T) {
	f := newTwoFactorFixture(t)
	f.seedUser(t, "P@ssw0rd!", nil)

	if err := f.service.Confirm(context.Background(), "a@x.com", "000000"); !errors.Is(err, ErrTwoFactorSetupRequired) {
		t.Fatalf("expected ErrTwoFactorSetupRequired, got %v", err)
	}
}

func TestTwoFactorSetupWhenAlreadyEnabled(t *testing.T) {
	f := newTwoFactorFixture(t)
	f.seedUser(t, "P@ssw0rd!", func(u *domain.User) {
		u.TwoFactorEnabled = true
		u.TwoFactorSecret = "JBSWY3DPEHPK3PXP"
	})

	if _, err := f.service.Setup(context.Background(), "a@x.com"); !errors.Is(err, ErrTwoFactorAlreadyEnabled) {
		t.Fatalf("expected ErrTwoFactorAlreadyEnabled, got %v", err)
	}
}

func TestTwoFactorDisableGuards(t *testing.T) {
	f := newTwoFactorFixture(t)

	now := time.Now()
	f.totp.WithClock(func() time.Time { return now })

	secret, err := f.totp.GenerateSecret("a@x.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	f.seedUser(t, "P@ssw0rd!", func(u *domain.User) {
		u.TwoFactorEnabled = true
		u.TwoFactorSecret = secret
	})

	ctx := context.Background()
	code, err := totp.GenerateCode(secret, now)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	if err := f.service.Disable(ctx, "a@x.com", "wrong-password", code); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := f.service.Disable(ctx, "a@x.com", "P@ssw0rd!", "000000"); !errors.Is(err, ErrOtpInvalidOrExpired) {
		t.Fatalf("expected ErrOtpInvalidOrExpired, got %v", err)
	}

	stored, _ := f.accounts.get("a@x.com")
	if !stored.TwoFactorEnabled {
		t.Fatal("failed guards must leave 2fa enabled")
	}

	f2 := newTwoFactorFixture(t)
	f2.seedUser(t, "P@ssw0rd!", nil)
	if err := f2.service.Disable(ctx, "a@x.com", "P@ssw0rd!", "000000"); !errors.Is(err, ErrTwoFactorNotEnabled) {
		t.Fatalf("expected ErrTwoFactorNotEnabled, got %v", err)
	}
}
