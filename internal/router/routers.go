package router

import (
	"github.com/Payphone-Digital/customer-service/config"
	"github.com/Payphone-Digital/customer-service/internal/handler"
	"github.com/Payphone-Digital/customer-service/internal/middleware"
	"github.com/Payphone-Digital/customer-service/pkg/metrics"
	"github.com/Payphone-Digital/customer-service/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Customer     *handler.CustomerHandler
	OTP          *handler.OTPHandler
	Address      *handler.AddressHandler
	Verification *handler.VerificationHandler
	SSO          *handler.SSOHandler
	Setting      *handler.SettingHandler
	User         *handler.UserHandler
	Report       *handler.ReportHandler
	Admin        *handler.AdminHandler
	Health       *handler.HealthHandler
}

type Router struct {
	h       Handlers
	jwtMw   *middleware.JWTMiddleware
	metrics *metrics.Metrics
	Config  *config.Config
}

func NewRouter(h Handlers, jwtMw *middleware.JWTMiddleware, m *metrics.Metrics, cfg *config.Config) *Router {
	return &Router{h: h, jwtMw: jwtMw, metrics: m, Config: cfg}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.UseJSONFieldNames(v)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestContext(r.Config.App.Timeout),
		middleware.RequestLogger(),
		middleware.Metrics(r.metrics),
		middleware.SecureHeaders(r.Config.IsProduction()),
		middleware.CORS(),
	)

	router.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", r.h.Health.HealthCheck)

		v1 := api.Group("/v1")
		v1.Use(middleware.RateLimit(r.Config.RateLimit.Request, r.Config.RateLimit.Duration))
		{
			r.customerRoutes(v1)
			r.ssoRoutes(v1)
			r.adminRoutes(v1)
			r.internalRoutes(v1)
		}
	}

	return router
}
