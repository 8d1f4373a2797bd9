package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/usecase"
)

// ErrorResponse represents a generic error payload with a stable machine
// readable code and a trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, code, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		Code:    code,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	FullName         string            `json:"full_name"`
	Phone            *string           `json:"phone,omitempty"`
	Status           domain.UserStatus `json:"status"`
	Role             domain.UserRole   `json:"role"`
	TwoFactorEnabled bool              `json:"two_factor_enabled"`
	CreatedAt        time.Time         `json:"created_at"`
}

func newUserSummary(u domain.User) UserSummary {
	return UserSummary{
		ID:               u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		Phone:            u.Phone,
		Status:           u.Status,
		Role:             u.Role,
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt,
	}
}

// RegisterRequest defines the payload for account registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// VerifyOtpRequest defines the payload for activating an account.
type VerifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// ResendOtpRequest defines the payload for re-issuing an activation code.
type ResendOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code"`
}

// TokenResponse carries an issued bearer token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func newTokenResponse(pair usecase.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	}
}

// LoginResponse bundles tokens with the authenticated user summary.
type LoginResponse struct {
	TokenResponse
	User UserSummary `json:"user"`
}

// RefreshRequest defines the payload for refresh-token rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ForgotPasswordRequest defines the payload for requesting a reset token.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest defines the payload for redeeming a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// TwoFactorSetupResponse returns enrollment material for an authenticator app.
type TwoFactorSetupResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURL string `json:"provisioning_url"`
}

// TwoFactorConfirmRequest defines the payload for confirming 2FA enrollment.
type TwoFactorConfirmRequest struct {
	Code string `json:"code" binding:"required"`
}

// TwoFactorDisableRequest defines the payload for disabling 2FA.
type TwoFactorDisableRequest struct {
	Password string `json:"password" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// UserStatsResponse reports account counts grouped by status.
type UserStatsResponse struct {
	Pending  int64 `json:"pending"`
	Active   int64 `json:"active"`
	Locked   int64 `json:"locked"`
	Disabled int64 `json:"disabled"`
	Total    int64 `json:"total"`
}

// HealthResponse reports liveness information.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports the outcome of each dependency probe.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
