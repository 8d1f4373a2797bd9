package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/transport/http/middleware"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/usecase"
)

// AuthHandler serves login, token refresh and session introspection endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler builds an auth handler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login verifies credentials and issues a bearer token pair. Login replaces
// the live refresh token for the account with the newly issued one.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "INVALID_REQUEST", "invalid request payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, req.TOTPCode)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			caseInvalidCredentials,
			{Err: usecase.ErrAccountNotActivated, Status: http.StatusForbidden,
				Code: "ACCOUNT_NOT_ACTIVATED", Message: "account is not activated"},
			{Err: usecase.ErrAccountTemporarilyLocked, Status: http.StatusForbidden,
				Code: "ACCOUNT_TEMPORARILY_LOCKED", Message: "account is temporarily locked, try again later"},
			{Err: usecase.ErrAccountDisabled, Status: http.StatusForbidden,
				Code: "ACCOUNT_DISABLED", Message: "account is disabled"},
			{Err: usecase.ErrOtpRequired, Status: http.StatusUnauthorized,
				Code: "OTP_REQUIRED", Message: "a one-time code is required"},
			caseOtpInvalid,
		}, http.StatusInternalServerError, "failed to log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		TokenResponse: newTokenResponse(result.Tokens),
		User:          newUserSummary(result.User),
	})
}

// Refresh rotates the refresh token and returns a new pair. A refresh token
// is redeemable exactly once; replays are rejected.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "INVALID_REQUEST", "invalid request payload"))
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRefreshTokenInvalid, Status: http.StatusUnauthorized,
				Code: "REFRESH_TOKEN_INVALID", Message: "refresh token is invalid or superseded"},
			{Err: usecase.ErrAccountTemporarilyLocked, Status: http.StatusForbidden,
				Code: "ACCOUNT_TEMPORARILY_LOCKED", Message: "account is temporarily locked, try again later"},
			{Err: usecase.ErrAccountDisabled, Status: http.StatusForbidden,
				Code: "ACCOUNT_DISABLED", Message: "account is disabled"},
			{Err: usecase.ErrAccountNotActivated, Status: http.StatusForbidden,
				Code: "ACCOUNT_NOT_ACTIVATED", Message: "account is not activated"},
		}, http.StatusInternalServerError, "failed to refresh tokens")
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(*pair))
}

// Me returns the profile of the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	subject, ok := middleware.AuthenticatedSubject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "UNAUTHENTICATED", "authentication required"))
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), subject)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			caseUserNotFound,
		}, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(*user))
}
