package middleware

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

const slowRequest = 2 * time.Second

// RequestLogger writes one structured line per request, levelled by status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := ctxutil.GetDuration(c.Request.Context())
		if latency == 0 {
			latency = time.Since(start)
		}
		status := c.Writer.Status()
		entry := logger.InfoWithContext(c.Request.Context(), "Request completed")
		switch {
		case status >= http.StatusInternalServerError:
			entry = logger.ErrorWithContext(c.Request.Context(), "Server error")
		case status >= http.StatusBadRequest:
			entry = logger.WarnWithContext(c.Request.Context(), "Client error")
		case latency > slowRequest:
			entry = logger.WarnWithContext(c.Request.Context(), "Slow request")
		}

		entry.
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			String("route", c.FullPath()).
			String("query", c.Request.URL.RawQuery).
			Int("status_code", status).
			Int("response_size", c.Writer.Size()).
			Duration(latency)
		if len(c.Errors) > 0 {
			entry.String("errors", c.Errors.String())
		}
		entry.Log()
	}
}

// Recovery turns a panic into the 500 error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.LogPanic(recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			constants.BuildErrorResponse(http.StatusInternalServerError, constants.MsgInternalError, nil))
	})
}
