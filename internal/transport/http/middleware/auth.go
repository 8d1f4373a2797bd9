package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/security"
)

const (
	// SubjectKey is the gin context key holding the authenticated email.
	SubjectKey = "auth_subject"
	// RoleKey is the gin context key holding the authenticated role.
	RoleKey = "auth_role"
)

// errorResponse mirrors handlers.ErrorResponse without importing the
// handlers package, which would create an import cycle.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, code, message string) errorResponse {
	return errorResponse{
		Error:   message,
		Code:    code,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the bearer access token and stores the subject and
// role in the request context. Refresh and reset tokens are rejected here
// even though they carry a valid signature.
func RequireAuth(tokens *security.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "UNAUTHENTICATED", "authorization header required"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "UNAUTHENTICATED", "invalid authorization header format"))
			return
		}

		claims, err := tokens.Validate(parts[1], "")
		if err != nil || claims.TokenType != security.TokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "UNAUTHENTICATED", "access token is invalid or expired"))
			return
		}

		c.Set(SubjectKey, claims.Subject)
		if role, ok := claims.Extra["role"].(string); ok {
			c.Set(RoleKey, role)
		}

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.Subject = claims.Subject
		}

		c.Next()
	}
}

// RequireRole checks that the authenticated account carries one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(RoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "UNAUTHENTICATED", "authentication required"))
			return
		}

		role, ok := roleVal.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "INTERNAL_ERROR", "invalid role format"))
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorResponse(c, "FORBIDDEN", "insufficient permissions"))
	}
}

// AuthenticatedSubject retrieves the authenticated email from context.
func AuthenticatedSubject(c *gin.Context) (string, bool) {
	subject, exists := c.Get(SubjectKey)
	if !exists {
		return "", false
	}

	if email, ok := subject.(string); ok && email != "" {
		return email, true
	}

	return "", false
}
