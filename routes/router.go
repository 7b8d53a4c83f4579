package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"civicreporter-be/controllers"
	"civicreporter-be/middlewares"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *controllers.AuthController
	Users         *controllers.UserController
	Reports       *controllers.ReportController
	Notifications *controllers.NotificationController
	Health        *controllers.HealthController

	Authenticator middlewares.Authenticator
	// AuthLimiter guards login, register and reset requests. Nil disables it.
	AuthLimiter gin.HandlerFunc
	// ReportLimiter caps report submissions. Nil disables it.
	ReportLimiter gin.HandlerFunc
}

type Options struct {
	AllowedOrigins []string
	Log            logrus.FieldLogger
}

// NewRouter assembles the gin engine with the shared middleware chain and
// every API group.
func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(opts.Log))
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	r.Use(middlewares.ErrorHandler(opts.Log))

	r.GET("/ping", h.Health.Ping)
	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	AuthRoutes(api, h)
	UserRoutes(api, h)
	ReportRoutes(api, h)
	NotificationRoutes(api, h)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// chain drops nil handlers so optional middleware can be left unset.
func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
