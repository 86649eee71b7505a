package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/eDyablo/finance/internal/api"
	"github.com/eDyablo/finance/internal/config"
	"github.com/eDyablo/finance/internal/database"
	"github.com/eDyablo/finance/internal/kafka"
	"github.com/eDyablo/finance/internal/ledger"
	"github.com/eDyablo/finance/internal/quote"
	"github.com/eDyablo/finance/internal/session"
)

const migrationsPath = "db/migrations"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	initLogger(cfg.Log)

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(migrationsPath); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	sessions := session.NewStore(redisClient, cfg.Session.TTL)
	quoter := quote.NewClient(cfg.Quote.BaseURL, cfg.Quote.APIKey, cfg.Quote.Timeout)
	service := ledger.New(db, quoter)

	var producer api.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer p.Close()
		producer = p
	}

	handler := api.NewHandler(service, sessions, producer, cfg.Session.CookieName, cfg.Session.TTL)
	router := api.SetupRoutes(handler)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logrus.WithField("addr", addr).Info("server listening")
	if err := http.ListenAndServe(addr, router); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func initLogger(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if cfg.File != "" {
		logrus.SetOutput(&lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  cfg.MaxSize, // MB
		})
	}
}
