package middleware

import (
	"context"
	"strings"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/service"
	ctxutil "github.com/Payphone-Digital/customer-service/pkg/context"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// TokenVersioner returns the stored token version of a subject.
type TokenVersioner interface {
	TokenVersion(ctx context.Context, id uint) (int, error)
}

type JWTMiddleware struct {
	jwtService *service.JWTService
	customers  TokenVersioner
	admins     TokenVersioner
}

func NewJWTMiddleware(jwtService *service.JWTService, customers, admins TokenVersioner) *JWTMiddleware {
	return &JWTMiddleware{jwtService: jwtService, customers: customers, admins: admins}
}

// RequireCustomer accepts customer access tokens whose version matches the
// stored one.
func (m *JWTMiddleware) RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithFunction(c.Request.Context(), "middleware", "JWT.RequireCustomer")

		token, ok := bearerToken(c)
		if !ok {
			logger.WarnWithContext(ctx, "Missing or malformed Authorization header").String("path", c.Request.URL.Path).Log()
			abortError(c, apperrors.ErrUnauthorized)
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(token)
		if err != nil {
			logger.WarnWithContext(ctx, "Invalid customer token").String("path", c.Request.URL.Path).Err(err).Log()
			abortError(c, tokenError(err))
			return
		}

		stored, err := m.customers.TokenVersion(ctx, claims.CustomerID)
		if err != nil {
			logger.WarnWithContext(ctx, "Customer token subject rejected").Uint("customer_id", claims.CustomerID).Err(err).Log()
			abortError(c, err)
			return
		}
		if err := service.CheckVersion(claims.TokenVersion, stored); err != nil {
			logger.WarnWithContext(ctx, "Customer token has been revoked").
				Uint("customer_id", claims.CustomerID).
				Int("token_version", claims.TokenVersion).
				Int("db_version", stored).
				Log()
			abortError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(constants.GinKeyCustomerID, claims.CustomerID)
		c.Set(constants.GinKeyCustomerPhone, claims.Phone)
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), claims.CustomerID))
		c.Next()
	}
}

// RequireAdmin accepts back-office tokens signed with the admin secret.
func (m *JWTMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithFunction(c.Request.Context(), "middleware", "JWT.RequireAdmin")

		token, ok := bearerToken(c)
		if !ok {
			abortError(c, apperrors.ErrUnauthorized)
			return
		}
		claims, err := m.jwtService.ValidateAdminToken(token)
		if err != nil {
			logger.WarnWithContext(ctx, "Invalid admin token").String("path", c.Request.URL.Path).Err(err).Log()
			abortError(c, tokenError(err))
			return
		}
		stored, err := m.admins.TokenVersion(ctx, claims.AdminID)
		if err != nil {
			abortError(c, apperrors.ErrUnauthorized)
			return
		}
		if service.CheckVersion(claims.TokenVersion, stored) != nil {
			logger.WarnWithContext(ctx, "Admin token has been revoked").Uint("admin_id", claims.AdminID).Log()
			abortError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(constants.GinKeyAdminID, claims.AdminID)
		c.Set(constants.GinKeyAdminRole, claims.Role)
		reqCtx := ctxutil.WithUserID(c.Request.Context(), claims.AdminID)
		reqCtx = context.WithValue(reqCtx, ctxutil.ActorRoleKey, claims.Role)
		c.Request = c.Request.WithContext(reqCtx)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(constants.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func tokenError(err error) error {
	if service.IsExpired(err) {
		return apperrors.ErrTokenExpired
	}
	return apperrors.ErrInvalidToken
}

func abortError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	c.AbortWithStatusJSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
}
