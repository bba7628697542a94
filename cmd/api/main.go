// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"

	"github.com/your-org/shopfront/internal/config"
	"github.com/your-org/shopfront/internal/infrastructure/database/postgres"
	"github.com/your-org/shopfront/internal/infrastructure/database/redis"
	"github.com/your-org/shopfront/internal/infrastructure/events"
	"github.com/your-org/shopfront/internal/interfaces/http"
	"github.com/your-org/shopfront/internal/interfaces/http/routes"
	"github.com/your-org/shopfront/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	decimal.MarshalJSONWithoutQuotes = true

	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("Starting %s", cfg.App.Name)

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Redis only backs the product cache and the shared rate limit window
	var redisClient *goredis.Client
	if rc, err := redis.NewConnection(cfg, log); err != nil {
		log.WithError(err).Warn("Redis unavailable, running without cache")
	} else {
		defer rc.Close()
		redisClient = rc.GetClient()
	}

	migration := postgres.NewMigration(db.GetDB(), log)

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation failed")
	}

	if cfg.App.SeedData {
		if err := migration.SeedInitialData(); err != nil {
			log.WithError(err).Warn("Data seeding failed")
		}
	}

	publisher := events.New(cfg, log)
	defer publisher.Close()

	services := routes.NewServices(cfg, db.GetDB(), redisClient, publisher, log)
	server := http.NewServer(cfg, db.GetDB(), redisClient, services, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("Server shutdown completed")
}
