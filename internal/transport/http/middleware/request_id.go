package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	// Inbound ids longer than this are replaced, they would bloat logs and
	// event metadata.
	maxRequestIDLength = 64
)

// RequestID propagates a correlation identifier: an acceptable inbound
// X-Request-ID is reused, anything else is replaced with a fresh UUID. The id
// is echoed on the response, stored in the gin context, and planted in the
// request context where the access log and the event publisher pick it up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = uuid.NewString()
		}

		c.Set("request_id", reqID)
		c.Writer.Header().Set(requestIDHeader, reqID)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
