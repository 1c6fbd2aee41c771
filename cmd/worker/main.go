package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jwebster45206/career-engine/internal/config"
	"github.com/jwebster45206/career-engine/internal/logger"
	"github.com/jwebster45206/career-engine/internal/storage"
	"github.com/jwebster45206/career-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	var store storage.SessionStore
	switch cfg.StorageBackend {
	case "redis":
		store = storage.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
	case "sqlite":
		store, err = storage.NewSQLiteStore(cfg.SQLitePath, log)
		if err != nil {
			log.Error("Failed to open sqlite store", "error", err)
			os.Exit(1)
		}
	default:
		log.Error("Sweep worker requires a persistent store", "backend", cfg.StorageBackend)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing session store", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	sweeper := worker.NewSweeper(store, log, cfg.SweepInterval, cfg.EventMaxAge, cfg.TrustDecayFactor)
	if err := sweeper.Run(ctx); err != nil {
		log.Error("Sweeper exited with error", "error", err)
		os.Exit(1)
	}
}
