package middleware

import (
	"crypto/subtle"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RequireAPIKey guards service-to-service routes with the X-API-Key header.
func RequireAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(constants.HeaderXAPIKey)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			logger.WarnWithContext(c.Request.Context(), "Rejected internal call").
				String("path", c.Request.URL.Path).
				Bool("key_present", got != "").
				Log()
			abortError(c, apperrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
