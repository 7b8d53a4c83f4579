package routes

import (
	"github.com/gin-gonic/gin"

	"civicreporter-be/middlewares"
)

// ReportRoutes sets up the report routes. Submission is open to anonymous
// callers; the limiter runs after OptionalAuth so it can key by user.
func ReportRoutes(api *gin.RouterGroup, h Handlers) {
	reports := api.Group("/reports")
	{
		reports.POST("/", chain(middlewares.OptionalAuth(h.Authenticator), h.ReportLimiter, h.Reports.CreateReport)...)
		reports.GET("/", middlewares.AuthMiddleware(h.Authenticator), h.Reports.ListReports)
		reports.GET("/stats/summary", middlewares.AuthMiddleware(h.Authenticator), h.Reports.Stats)
		reports.GET("/:id", middlewares.AuthMiddleware(h.Authenticator), h.Reports.GetReport)
		reports.PUT("/:id/status", middlewares.AuthMiddleware(h.Authenticator), h.Reports.UpdateStatus)
	}
}
