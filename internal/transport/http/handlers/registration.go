package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/usecase"
)

// RegistrationHandler serves account creation and activation endpoints.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

// NewRegistrationHandler builds a registration handler.
func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterRoutes attaches the registration endpoints to the given group.
func (h *RegistrationHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/register", h.Register)
	group.POST("/verify-otp", h.VerifyOtp)
	group.POST("/resend-otp", h.ResendOtp)
}

// Register creates a new account in PENDING state (or ACTIVE when activation
// gating is disabled) and issues an activation code.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "INVALID_REQUEST", "invalid request payload"))
		return
	}

	user, err := h.registration.Register(c.Request.Context(), req.Email, req.Password, req.FullName, req.Phone)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailRequired, Status: http.StatusBadRequest,
				Code: "EMAIL_REQUIRED", Message: "email is required"},
			{Err: usecase.ErrEmailAlreadyUsed, Status: http.StatusConflict,
				Code: "EMAIL_ALREADY_USED", Message: "an account with that email already exists"},
			caseWeakPassword,
		}, http.StatusInternalServerError, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "registration accepted",
		User:    newUserSummary(*user),
	})
}

// VerifyOtp redeems an activation code and transitions the account to ACTIVE.
func (h *RegistrationHandler) VerifyOtp(c *gin.Context) {
	var req VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "INVALID_REQUEST", "invalid request payload"))
		return
	}

	if err := h.registration.VerifyOtp(c.Request.Context(), req.Email, req.Code); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			caseUserWithEmailNotFound,
			caseOtpInvalid,
			{Err: usecase.ErrOtpAlreadyVerified, Status: http.StatusConflict,
				Code: "OTP_ALREADY_VERIFIED", Message: "account is already activated"},
		}, http.StatusInternalServerError, "failed to verify code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "account activated"})
}

// ResendOtp issues a fresh activation code, replacing any outstanding one.
func (h *RegistrationHandler) ResendOtp(c *gin.Context) {
	var req ResendOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "INVALID_REQUEST", "invalid request payload"))
		return
	}

	if err := h.registration.ResendOtp(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			caseUserNotFound,
			{Err: usecase.ErrOtpFeatureDisabled, Status: http.StatusBadRequest,
				Code: "OTP_FEATURE_DISABLED", Message: "activation codes are disabled"},
			{Err: usecase.ErrOtpAlreadyVerified, Status: http.StatusConflict,
				Code: "OTP_ALREADY_VERIFIED", Message: "account is already activated"},
		}, http.StatusInternalServerError, "failed to resend code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "activation code sent"})
}
