package router

import "github.com/gin-gonic/gin"

func (r *Router) customerRoutes(version *gin.RouterGroup) {
	customers := version.Group("/customers")
	{
		customers.POST("/register", r.h.Customer.Register)
		customers.POST("/login", r.h.Customer.Login)
		customers.POST("/refresh", r.h.Customer.Refresh)
		customers.POST("/check", r.h.Customer.CheckAvailability)
		customers.GET("/settings/public", r.h.Setting.Public)
		customers.GET("/cities", r.h.Address.SearchCities)

		otp := customers.Group("/otp")
		{
			otp.POST("", r.h.OTP.Create)
			otp.POST("/validate", r.h.OTP.Validate)
			otp.POST("/resend", r.h.OTP.Resend)
		}

		protected := customers.Group("")
		protected.Use(r.jwtMw.RequireCustomer())
		{
			protected.POST("/logout", r.h.Customer.Logout)
			protected.GET("/profile", r.h.Customer.GetProfile)
			protected.PUT("/profile", r.h.Customer.UpdateProfile)
			protected.PUT("/profile/password", r.h.Customer.UpdatePassword)
			protected.DELETE("/profile", r.h.Customer.DeleteProfile)

			addresses := protected.Group("/addresses")
			{
				addresses.GET("", r.h.Address.List)
				addresses.POST("", r.h.Address.Create)
				addresses.GET("/:id", r.h.Address.Get)
				addresses.PUT("/:id", r.h.Address.Update)
				addresses.DELETE("/:id", r.h.Address.Delete)
				addresses.PUT("/:id/activate", r.h.Address.Activate)
			}

			verification := protected.Group("/verification")
			{
				verification.POST("/email/request", r.h.Verification.RequestEmail)
				verification.POST("/email/validate", r.h.Verification.ValidateEmail)
				verification.POST("/phone/request", r.h.Verification.RequestPhone)
				verification.POST("/phone/validate", r.h.Verification.ValidatePhone)
			}
		}
	}
}

func (r *Router) ssoRoutes(version *gin.RouterGroup) {
	sso := version.Group("/customer/sso")
	{
		sso.POST("/login", r.h.SSO.Login)
		sso.POST("/token", r.h.SSO.Token)
		sso.POST("/refresh", r.h.SSO.Refresh)
		sso.GET("/sync/status", r.jwtMw.RequireAdmin(), r.h.SSO.SyncStatus)
	}
}
