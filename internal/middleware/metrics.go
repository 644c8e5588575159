package middleware

import (
	"time"

	"github.com/Payphone-Digital/customer-service/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by matched route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
