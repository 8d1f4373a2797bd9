package domain

import "time"

// UserRegisteredEvent represents the payload for auth.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	Status       string
	RegisteredAt time.Time
	OTPIssued    bool
	Metadata     map[string]any
}

// UserActivatedEvent represents the payload for auth.user.activated messages.
type UserActivatedEvent struct {
	EventID     string
	UserID      string
	Email       string
	ActivatedAt time.Time
	Metadata    map[string]any
}

// AccountLockedEvent represents the payload for auth.account.locked messages.
type AccountLockedEvent struct {
	EventID        string
	UserID         string
	Email          string
	FailedAttempts int
	LockedAt       time.Time
	LockedUntil    time.Time
	Metadata       map[string]any
}

// UserLoggedInEvent represents the payload for auth.user.logged_in messages.
type UserLoggedInEvent struct {
	EventID    string
	UserID     string
	Email      string
	LoggedInAt time.Time
	UsedTOTP   bool
	Metadata   map[string]any
}

// PasswordResetEvent represents the payload for auth.user.password_reset messages.
type PasswordResetEvent struct {
	EventID  string
	UserID   string
	Email    string
	ResetAt  time.Time
	Metadata map[string]any
}
