package postgres

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/security"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/repository"
)

func newMockRepo(t *testing.T, cipher *security.SecretCipher) (pgxmock.PgxPoolIface, *AccountRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mock, NewAccountRepository(mock, cipher)
}

func testCipher(t *testing.T) *security.SecretCipher {
	t.Helper()

	cipher, err := security.NewSecretCipher(bytes.Repeat([]byte{9}, 32))
	if err != nil {
		t.Fatalf("NewSecretCipher: %v", err)
	}
	return cipher
}

func TestAccountRepository_Save(t *testing.T) {
	mock, repo := newMockRepo(t, nil)

	now := time.Now().UTC()
	user := domain.User{
		ID:           "user-123",
		Email:        "Long@Example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		FullName:     "Thanh Long",
		Status:       domain.UserStatusPending,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO expense\.users`).
		WithArgs(
			user.ID,
			"long@example.com",
			user.PasswordHash,
			user.FullName,
			nil,
			user.Status,
			user.Role,
			false,
			"",
			0,
			nil,
			now,
			now,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Save(context.Background(), user); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_FindByEmail(t *testing.T) {
	cipher := testCipher(t)
	mock, repo := newMockRepo(t, cipher)

	encrypted, err := cipher.Encrypt("JBSWY3DPEHPK3PXP")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	now := time.Now().UTC()
	rows := pgxmock.NewRows(userColumns).AddRow(
		"user-123",
		"long@example.com",
		"$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"Thanh Long",
		nil,
		domain.UserStatusActive,
		domain.RoleUser,
		true,
		encrypted,
		0,
		(*time.Time)(nil),
		now,
		now,
	)

	mock.ExpectQuery(`SELECT .+ FROM expense\.users WHERE email = \$1`).
		WithArgs("long@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "Long@Example.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}

	if user.TwoFactorSecret != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("expected decrypted secret, got %q", user.TwoFactorSecret)
	}
	if user.Status != domain.UserStatusActive {
		t.Fatalf("unexpected status %s", user.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_FindByEmailNotFound(t *testing.T) {
	mock, repo := newMockRepo(t, nil)

	mock.ExpectQuery(`SELECT .+ FROM expense\.users`).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns))

	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountRepository_ExistsByEmail(t *testing.T) {
	mock, repo := newMockRepo(t, nil)

	mock.ExpectQuery(`SELECT 1 FROM expense\.users`).
		WithArgs("long@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "long@example.com")
	if err != nil {
		t.Fatalf("ExistsByEmail returned error: %v", err)
	}
	if !exists {
		t.Fatalf("expected user to exist")
	}

	mock.ExpectQuery(`SELECT 1 FROM expense\.users`).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("ExistsByEmail returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected user to be absent")
	}
}

func TestAccountRepository_CountByStatus(t *testing.T) {
	mock, repo := newMockRepo(t, nil)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM expense\.users`).
		WithArgs(domain.UserStatusActive).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := repo.CountByStatus(context.Background(), domain.UserStatusActive)
	if err != nil {
		t.Fatalf("CountByStatus returned error: %v", err)
	}
	if count != 42 {
		t.Fatalf("expected 42, got %d", count)
	}
}
