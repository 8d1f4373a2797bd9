package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/transport/http/middleware"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/usecase"
)

// TwoFactorHandler serves the TOTP enrollment lifecycle endpoints.
type TwoFactorHandler struct {
	twoFactor *usecase.TwoFactorService
}

// NewTwoFactorHandler builds a two-factor handler.
func NewTwoFactorHandler(twoFactor *usecase.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactor: twoFactor}
}

// RegisterRoutes attaches the two-factor endpoints to the given group. The
// group is expected to already require authentication.
func (h *TwoFactorHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/setup", h.Setup)
	group.POST("/confirm", h.Confirm)
	group.POST("/disable", h.Disable)
}

// Setup stages a TOTP secret for the account and returns provisioning
// material. The secret only takes effect after Confirm.
func (h *TwoFactorHandler) Setup(c *gin.Context) {
	subject, ok := middleware.AuthenticatedSubject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "UNAUTHENTICATED", "authentication required"))
		return
	}

	enrollment, err := h.twoFactor.Setup(c.Request.Context(), subject)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			caseUserNotFound,
			{Err: usecase.ErrTwoFactorAlreadyEnabled, Status: http.StatusConflict,
				Code: "2FA_ALREADY_ENABLED", Message: "two-factor authentication is already enabled"},
		}, http.StatusInternalServerError, "failed to start two-factor setup")
		return
	}

	c.JSON(http.StatusOK, TwoFactorSetupResponse{
		Secret:          enrollment.Secret,
		ProvisioningURL: enrollment.ProvisioningURL,
	})
}

// Confirm verifies a code produced from the staged secret and enables 2FA.
func (h *TwoFactorHandler) Confirm(c *gin.Context) {
	subject, ok := middleware.AuthenticatedSubject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "UNAUTHENTICATED", "authentication required"))
		return
	}

	var req TwoFactorConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "INVALID_REQUEST", "invalid request payload"))
		return
	}

	if err := h.twoFactor.Confirm(c.Request.Context(), subject, req.Code); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			caseUserNotFound,
			caseOtpInvalid,
			{Err: usecase.ErrTwoFactorAlreadyEnabled, Status: http.StatusConflict,
				Code: "2FA_ALREADY_ENABLED", Message: "two-factor authentication is already enabled"},
			{Err: usecase.ErrTwoFactorSetupRequired, Status: http.StatusBadRequest,
				Code: "2FA_SETUP_REQUIRED", Message: "two-factor setup has not been started"},
		}, http.StatusInternalServerError, "failed to confirm two-factor setup")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "two-factor authentication enabled"})
}

// Disable turns off 2FA after re-verifying the password and a current code.
func (h *TwoFactorHandler) Disable(c *gin.Context) {
	subject, ok := middleware.AuthenticatedSubject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "UNAUTHENTICATED", "authentication required"))
		return
	}

	var req TwoFactorDisableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "INVALID_REQUEST", "invalid request payload"))
		return
	}

	if err := h.twoFactor.Disable(c.Request.Context(), subject, req.Password, req.Code); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			caseUserNotFound,
			caseInvalidCredentials,
			caseOtpInvalid,
			{Err: usecase.ErrTwoFactorNotEnabled, Status: http.StatusConflict,
				Code: "2FA_NOT_ENABLED", Message: "two-factor authentication is not enabled"},
		}, http.StatusInternalServerError, "failed to disable two-factor authentication")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "two-factor authentication disabled"})
}
