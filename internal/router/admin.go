package router

import "github.com/gin-gonic/gin"

func (r *Router) adminRoutes(version *gin.RouterGroup) {
	admins := version.Group("/admins")
	{
		admins.POST("/login", r.h.Admin.Login)

		protected := admins.Group("")
		protected.Use(r.jwtMw.RequireAdmin())
		{
			protected.POST("/logout", r.h.Admin.Logout)
			protected.GET("/me", r.h.Admin.Me)

			settings := protected.Group("/settings")
			{
				settings.GET("", r.h.Setting.List)
				settings.PUT("", r.h.Setting.BulkUpdate)
				settings.GET("/sso", r.h.Setting.SSOConfig)
				settings.PUT("/sso", r.h.Setting.UpdateSSOConfig)
				settings.GET("/:name", r.h.Setting.Get)
			}
		}
	}
}
