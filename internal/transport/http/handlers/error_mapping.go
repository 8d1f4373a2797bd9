package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code, a stable machine
// readable code, and a response message.
type ErrorCase struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or
// falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Code, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, "INTERNAL_ERROR", fallbackMessage))
}

// Shared cases reused by several handlers.
var (
	caseInvalidCredentials = ErrorCase{
		Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized,
		Code: "INVALID_CREDENTIALS", Message: "invalid email or password",
	}
	caseUserNotFound = ErrorCase{
		Err: usecase.ErrUserNotFound, Status: http.StatusNotFound,
		Code: "USER_NOT_FOUND", Message: "user not found",
	}
	caseUserWithEmailNotFound = ErrorCase{
		Err: usecase.ErrUserWithEmailNotFound, Status: http.StatusNotFound,
		Code: "USER_WITH_EMAIL_NOT_FOUND", Message: "no account for that email",
	}
	caseWeakPassword = ErrorCase{
		Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest,
		Code: "WEAK_PASSWORD", Message: "password does not meet the strength policy",
	}
	caseOtpInvalid = ErrorCase{
		Err: usecase.ErrOtpInvalidOrExpired, Status: http.StatusUnauthorized,
		Code: "OTP_INVALID_OR_EXPIRED", Message: "code is invalid or has expired",
	}
)
