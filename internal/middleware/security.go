package middleware

import (
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// SecureHeaders applies the standard response hardening headers. HTTPS
// redirects are only enforced in production.
func SecureHeaders(production bool) gin.HandlerFunc {
	s := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:         31536000,
		IsDevelopment:      !production,
	})

	return func(c *gin.Context) {
		// Process writes the redirect or rejection itself.
		if err := s.Process(c.Writer, c.Request); err != nil {
			logger.GetLogger().Debug("Request stopped by security policy",
				zap.String("host", c.Request.Host),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.Abort()
			return
		}
		c.Next()
	}
}
