package main

import (
	"context"
	"log"
	"time"

	"lesson-byte/internal/config"
	"lesson-byte/internal/database"
	"lesson-byte/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()
	if cfg.ConfigFile != "" {
		l.Info("Using config file", zap.String("path", cfg.ConfigFile))
	}

	if !cfg.DatabaseEnabled() {
		l.Fatal("Database is not configured; set DB_HOST and DB_USER")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.DB); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err))
	}
	l.Info("Migrations applied")
}
