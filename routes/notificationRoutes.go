package routes

import (
	"github.com/gin-gonic/gin"

	"civicreporter-be/middlewares"
)

func NotificationRoutes(api *gin.RouterGroup, h Handlers) {
	n := api.Group("/notifications", middlewares.AuthMiddleware(h.Authenticator))
	{
		n.POST("/", h.Notifications.Create)
		n.GET("/", h.Notifications.List)
		n.POST("/broadcast", h.Notifications.Broadcast)
		n.PUT("/mark-all-read", h.Notifications.MarkAllRead)
		n.GET("/stats/unread-count", h.Notifications.UnreadCount)
		n.GET("/admin/all", h.Notifications.ListAll)
		n.GET("/:id", h.Notifications.Get)
		n.PUT("/:id/read", h.Notifications.MarkRead)
		n.DELETE("/:id", h.Notifications.Delete)
	}
}
