package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/port"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/security"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/repository"
)

const usersTable = "expense.users"

var userColumns = []string{
	"id",
	"email",
	"password_hash",
	"full_name",
	"phone",
	"status",
	"role",
	"two_factor_enabled",
	"two_factor_secret",
	"failed_login_attempts",
	"locked_until",
	"created_at",
	"updated_at",
}

// AccountRepository implements port.AccountStore using PostgreSQL.
// The 2FA secret is encrypted on the way in and decrypted on the way out, so
// nothing above this layer ever sees ciphertext and the database never sees
// the raw secret.
type AccountRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	cipher  *security.SecretCipher
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor, cipher *security.SecretCipher) *AccountRepository {
	repo := &AccountRepository{
		exec:    exec,
		cipher:  cipher,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *AccountRepository) WithTx(tx pgx.Tx) *AccountRepository {
	if tx == nil {
		return r
	}
	return &AccountRepository{
		pool:    r.pool,
		exec:    tx,
		cipher:  r.cipher,
		builder: r.builder,
	}
}

// FindByEmail retrieves a user by email, matching case-insensitively.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"email": normalizeEmail(email)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	return r.scanUser(row)
}

// ExistsByEmail reports whether a user row exists for the email.
func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From(usersTable).
		Where(squirrel.Eq{"email": normalizeEmail(email)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists user sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query user exists: %w", err)
	}

	return true, nil
}

// Save upserts the full user row keyed by id. Re-running the same Save is a no-op.
func (r *AccountRepository) Save(ctx context.Context, user domain.User) error {
	secret, err := r.encryptSecret(user.TwoFactorSecret)
	if err != nil {
		return err
	}

	var phoneValue any
	if user.Phone != nil && *user.Phone != "" {
		phoneValue = *user.Phone
	}

	var lockedValue any
	if user.LockedUntil != nil {
		lockedValue = user.LockedUntil.UTC()
	}

	query := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(
			user.ID,
			normalizeEmail(user.Email),
			user.PasswordHash,
			user.FullName,
			phoneValue,
			user.Status,
			user.Role,
			user.TwoFactorEnabled,
			secret,
			user.FailedLoginAttempts,
			lockedValue,
			user.CreatedAt.UTC(),
			user.UpdatedAt.UTC(),
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			full_name = EXCLUDED.full_name,
			phone = EXCLUDED.phone,
			status = EXCLUDED.status,
			role = EXCLUDED.role,
			two_factor_enabled = EXCLUDED.two_factor_enabled,
			two_factor_secret = EXCLUDED.two_factor_secret,
			failed_login_attempts = EXCLUDED.failed_login_attempts,
			locked_until = EXCLUDED.locked_until,
			updated_at = EXCLUDED.updated_at`)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// CountByStatus returns how many users currently carry the given status.
func (r *AccountRepository) CountByStatus(ctx context.Context, status domain.UserStatus) (int64, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From(usersTable).
		Where(squirrel.Eq{"status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count users sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

func (r *AccountRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user        domain.User
		phone       sql.NullString
		secret      sql.NullString
		lockedUntil *time.Time
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&phone,
		&user.Status,
		&user.Role,
		&user.TwoFactorEnabled,
		&secret,
		&user.FailedLoginAttempts,
		&lockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if phone.Valid {
		value := phone.String
		user.Phone = &value
	}
	if lockedUntil != nil {
		value := lockedUntil.UTC()
		user.LockedUntil = &value
	}

	if secret.Valid && secret.String != "" {
		plain, err := r.decryptSecret(secret.String)
		if err != nil {
			return nil, err
		}
		user.TwoFactorSecret = plain
	}

	return &user, nil
}

func (r *AccountRepository) encryptSecret(secret string) (string, error) {
	if r.cipher == nil || secret == "" {
		return secret, nil
	}
	encrypted, err := r.cipher.Encrypt(secret)
	if err != nil {
		return "", fmt.Errorf("encrypt two factor secret: %w", err)
	}
	return encrypted, nil
}

func (r *AccountRepository) decryptSecret(stored string) (string, error) {
	if r.cipher == nil {
		return stored, nil
	}
	plain, err := r.cipher.Decrypt(stored)
	if err != nil {
		return "", fmt.Errorf("decrypt two factor secret: %w", err)
	}
	return plain, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ port.AccountStore = (*AccountRepository)(nil)
