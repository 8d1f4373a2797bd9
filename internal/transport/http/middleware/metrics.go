package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/telemetry"
)

// Metrics records per-request duration observations. The route label uses the
// registered route template so path parameters do not explode cardinality.
func Metrics(provider *telemetry.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if provider == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		provider.ObserveRequest(route, c.Request.Method,
			strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
