package routes

import (
	"github.com/gin-gonic/gin"

	"civicreporter-be/middlewares"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(api *gin.RouterGroup, h Handlers) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", chain(h.AuthLimiter, h.Auth.Register)...)
		auth.POST("/login", chain(h.AuthLimiter, h.Auth.Login)...)
		auth.GET("/me", middlewares.AuthMiddleware(h.Authenticator), h.Auth.Me)
		auth.POST("/refresh", middlewares.AuthMiddleware(h.Authenticator), h.Auth.Refresh)
		auth.POST("/logout", middlewares.AuthMiddleware(h.Authenticator), h.Auth.Logout)
	}
}
