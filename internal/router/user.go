package router

import (
	"github.com/Payphone-Digital/customer-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// internalRoutes are called by sibling services with the shared API key.
func (r *Router) internalRoutes(version *gin.RouterGroup) {
	internal := version.Group("/internal")
	internal.Use(middleware.RequireAPIKey(r.Config.Internal.APIKey))

	customers := internal.Group("/customers")
	{
		customers.GET("", r.h.User.List)
		customers.GET("/:id", r.h.User.Get)
		customers.PUT("/:id/status", r.h.User.UpdateStatus)
		customers.DELETE("/:id", r.h.User.Delete)
		customers.POST("/:id/restore", r.h.User.Restore)
	}

	reports := internal.Group("/reports")
	{
		reports.GET("/customers", r.h.Report.CustomerSummary)
		reports.GET("/customers/export", r.h.Report.ExportCustomers)
	}
}
