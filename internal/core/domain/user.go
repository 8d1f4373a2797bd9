package domain

import "time"

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusLocked   UserStatus = "LOCKED"
	UserStatusDisabled UserStatus = "DISABLED"
)

// UserRole enumerates the roles understood by the authorization layer.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User mirrors the persisted representation in the users table.
// TwoFactorSecret is stored encrypted; the repository decrypts it on load
// and it must never leave the process through an API response.
type User struct {
	ID                  string
	Email               string
	PasswordHash        string
	FullName            string
	Phone               *string
	Status              UserStatus
	Role                UserRole
	TwoFactorEnabled    bool
	TwoFactorSecret     string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsLockExpired reports whether a LOCKED account's lockout window has elapsed.
func (u User) IsLockExpired(at time.Time) bool {
	if u.Status != UserStatusLocked {
		return false
	}
	return u.LockedUntil == nil || !u.LockedUntil.After(at)
}

// Unlock clears the lockout state and restores the account to ACTIVE.
// Returns true if the user transitioned out of LOCKED.
func (u *User) Unlock() bool {
	changed := u.Status == UserStatusLocked
	if changed {
		u.Status = UserStatusActive
	}
	u.LockedUntil = nil
	u.FailedLoginAttempts = 0
	return changed
}

// Lock moves the account into LOCKED until the supplied deadline.
func (u *User) Lock(until time.Time, attempts int) {
	deadline := until
	u.Status = UserStatusLocked
	u.LockedUntil = &deadline
	u.FailedLoginAttempts = attempts
}

// Sanitized returns a copy safe to hand outside the core: the password hash
// and the 2FA secret are stripped.
func (u User) Sanitized() User {
	copied := u
	copied.PasswordHash = ""
	copied.TwoFactorSecret = ""
	return copied
}
