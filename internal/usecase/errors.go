package usecase

import "errors"

var (
	// ErrEmailRequired indicates the email was empty after normalization.
	ErrEmailRequired = errors.New("email is required")
	// ErrEmailAlreadyUsed indicates a registration attempt for an email that already has an account.
	ErrEmailAlreadyUsed = errors.New("email already used")
	// ErrUserWithEmailNotFound indicates no account exists for the supplied email.
	ErrUserWithEmailNotFound = errors.New("user with email not found")
	// ErrUserNotFound indicates the referenced account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrOtpInvalidOrExpired indicates the one-time code did not match or has lapsed.
	ErrOtpInvalidOrExpired = errors.New("otp invalid or expired")
	// ErrOtpAlreadyVerified indicates the account is already activated.
	ErrOtpAlreadyVerified = errors.New("otp already verified")
	// ErrOtpFeatureDisabled indicates OTP gating is switched off.
	ErrOtpFeatureDisabled = errors.New("otp feature disabled")
	// ErrOtpRequired indicates a second factor code must accompany the credentials.
	ErrOtpRequired = errors.New("otp required")
	// ErrInvalidCredentials indicates the email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotActivated indicates the account has not completed activation.
	ErrAccountNotActivated = errors.New("account not activated")
	// ErrAccountTemporarilyLocked indicates the account is inside a lockout window.
	ErrAccountTemporarilyLocked = errors.New("account temporarily locked")
	// ErrAccountDisabled indicates the account was disabled and cannot authenticate.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrRefreshTokenInvalid covers tampered, expired, and already-rotated refresh
	// tokens. The cases are deliberately not distinguished.
	ErrRefreshTokenInvalid = errors.New("refresh token invalid")
	// ErrResetTokenInvalid indicates the reset token is malformed, expired, or of the wrong kind.
	ErrResetTokenInvalid = errors.New("reset token invalid")
	// ErrTokenAlreadyUsed indicates the reset token was consumed or superseded.
	ErrTokenAlreadyUsed = errors.New("token already used")
	// ErrWeakPassword indicates the candidate password fails the password policy.
	ErrWeakPassword = errors.New("password does not meet policy")
	// ErrTwoFactorAlreadyEnabled indicates 2FA enrollment was already completed.
	ErrTwoFactorAlreadyEnabled = errors.New("two factor already enabled")
	// ErrTwoFactorNotEnabled indicates the account has no active 2FA enrollment.
	ErrTwoFactorNotEnabled = errors.New("two factor not enabled")
	// ErrTwoFactorSetupRequired indicates confirmation was attempted before setup.
	ErrTwoFactorSetupRequired = errors.New("two factor setup required")
)
