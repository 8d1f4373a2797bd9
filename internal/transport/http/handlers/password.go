package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/usecase"
)

// PasswordHandler serves the password-reset endpoints.
type PasswordHandler struct {
	resets *usecase.PasswordResetService
}

// NewPasswordHandler builds a password handler.
func NewPasswordHandler(resets *usecase.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

// RegisterRoutes attaches the password endpoints to the given group.
func (h *PasswordHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/forgot-password", h.ForgotPassword)
	group.POST("/reset-password", h.ResetPassword)
}

// ForgotPassword issues a single-use reset token and dispatches it to the
// account's email address. Issuing a new token displaces any outstanding one.
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "INVALID_REQUEST", "invalid request payload"))
		return
	}

	if err := h.resets.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			caseUserWithEmailNotFound,
		}, http.StatusInternalServerError, "failed to initiate password reset")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password reset instructions sent"})
}

// ResetPassword redeems a reset token and replaces the account password. All
// live refresh tokens for the account are revoked.
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "INVALID_REQUEST", "invalid request payload"))
		return
	}

	if err := h.resets.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetTokenInvalid, Status: http.StatusUnauthorized,
				Code: "RESET_TOKEN_INVALID", Message: "reset token is invalid or expired"},
			{Err: usecase.ErrTokenAlreadyUsed, Status: http.StatusConflict,
				Code: "TOKEN_ALREADY_USED", Message: "reset token was already used or superseded"},
			caseWeakPassword,
			caseUserWithEmailNotFound,
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
