package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"civicreporter-be/controllers"
	"civicreporter-be/middlewares"
	"civicreporter-be/routes"
	"civicreporter-be/store"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := store.EnsureIndexes(ctx, a.db); err != nil {
		return err
	}

	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           routes.NewRouter(a.handlers(), routes.Options{AllowedOrigins: a.cfg.CORSAllowedOrigins, Log: a.log}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErr := make(chan error, 1)
	go func() {
		a.log.WithField("address", server.Addr).Info("starting http server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		a.log.WithField("signal", sig.String()).Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.log.WithError(err).Error("server shutdown failed")
			return err
		}
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	a.log.Info("server stopped")
	return nil
}

func (a *app) handlers() routes.Handlers {
	checks := map[string]controllers.Pinger{
		"mongodb": func(ctx context.Context) error { return a.mongo.Ping(ctx, readpref.Primary()) },
	}
	h := routes.Handlers{
		Auth:          controllers.NewAuthController(a.directory, a.registrations),
		Users:         controllers.NewUserController(a.directory, a.registrations),
		Reports:       controllers.NewReportController(a.reports),
		Notifications: controllers.NewNotificationController(a.notifications),
		Authenticator: a.directory,
		AuthLimiter:   middlewares.RateLimit(a.cfg.AuthRateLimit, a.cfg.AuthRatePeriod),
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
		h.ReportLimiter = middlewares.ReportRateLimiter(a.redis, a.cfg.ReportLimitPrefix, int(a.cfg.ReportDailyLimit), 24*time.Hour, a.log)
	}
	h.Health = controllers.NewHealthController(checks)
	return h
}
