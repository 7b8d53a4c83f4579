package routes

import (
	"github.com/gin-gonic/gin"

	"civicreporter-be/middlewares"
)

// UserRoutes mounts account administration plus the registration and
// password reset queues. Reset requests are the one unauthenticated entry.
func UserRoutes(api *gin.RouterGroup, h Handlers) {
	users := api.Group("/users")
	users.POST("/password-reset-requests/", chain(h.AuthLimiter, h.Users.RequestPasswordReset)...)

	authed := users.Group("", middlewares.AuthMiddleware(h.Authenticator))
	{
		authed.GET("/", h.Users.ListUsers)
		authed.GET("/:id", h.Users.GetUser)
		authed.PUT("/:id/activate", h.Users.Activate)
		authed.PUT("/:id/deactivate", h.Users.Deactivate)

		authed.GET("/registration-requests/", h.Users.ListRegistrationRequests)
		authed.POST("/registration-requests/:id/approve", h.Users.ApproveRegistration)
		authed.POST("/registration-requests/:id/reject", h.Users.RejectRegistration)

		authed.GET("/password-reset-requests/", h.Users.ListPasswordResets)
		authed.POST("/password-reset-requests/:id/approve", h.Users.ApprovePasswordReset)
		authed.POST("/password-reset-requests/:id/reject", h.Users.RejectPasswordReset)
	}
}
