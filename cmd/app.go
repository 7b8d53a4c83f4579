package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"civicreporter-be/config"
	"civicreporter-be/credentials"
	"civicreporter-be/logger"
	"civicreporter-be/services"
	"civicreporter-be/store"
)

// app holds the long-lived dependencies shared by the commands.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	mongo *mongo.Client
	db    *mongo.Database
	redis *redis.Client

	directory     *services.DirectoryService
	reports       *services.ReportService
	notifications *services.NotificationService
	registrations *services.RegistrationService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.Env)

	client, db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.DatabaseName)
	if err != nil {
		return nil, err
	}
	log.WithField("database", cfg.DatabaseName).Info("connected to mongodb")

	a := &app{cfg: cfg, log: log, mongo: client, db: db}
	if cfg.RedisEnabled() {
		rdb, err := config.NewRedisClient(ctx, cfg.RedisAddress, cfg.RedisPassword)
		if err != nil {
			a.close()
			return nil, err
		}
		a.redis = rdb
		log.WithField("address", cfg.RedisAddress).Info("connected to redis")
	}

	tokens := credentials.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	hasher := credentials.NewHasher(cfg.BcryptCost)

	users := store.NewUserStore(db)
	a.notifications = services.NewNotificationService(store.NewNotificationStore(db), log)
	a.directory = services.NewDirectoryService(users, tokens, hasher, log)
	a.reports = services.NewReportService(store.NewReportStore(db), a.notifications, log)
	a.registrations = services.NewRegistrationService(
		users,
		store.NewRegistrationStore(db),
		store.NewPasswordResetStore(db),
		hasher,
		a.notifications,
		log,
	)
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("redis close failed")
		}
	}
	if err := a.mongo.Disconnect(context.Background()); err != nil {
		a.log.WithError(err).Warn("mongodb disconnect failed")
	}
}
