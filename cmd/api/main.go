package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/career-engine/internal/config"
	"github.com/jwebster45206/career-engine/internal/handlers"
	"github.com/jwebster45206/career-engine/internal/logger"
	"github.com/jwebster45206/career-engine/internal/storage"
	"github.com/jwebster45206/career-engine/pkg/content"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Career Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_backend", cfg.StorageBackend,
		"content_dir", cfg.ContentDir)

	// Content is the CI-gated input: refuse to serve anything if a single
	// document fails validation.
	contentStore := content.NewStore()
	report, err := contentStore.LoadDir(cfg.ContentDir)
	if err != nil {
		for _, doc := range report.Documents {
			for _, e := range doc.Errors {
				log.Error("Content validation error", "file", doc.File, "doc", doc.Index, "path", e.Path, "message", e.Message)
			}
		}
		log.Error("Failed to load content", "error", err)
		os.Exit(1)
	}
	log.Info("Content loaded", "scenarios", contentStore.Len())

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
	case "memory":
		store = storage.NewMockStore()
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer pingCancel()
	if err := store.Ping(pingCtx); err != nil {
		log.Error("Failed to connect to session store", "error", err)
		os.Exit(1)
	}
	log.Info("Session store connection established")

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, log))

	scenarioHandler := handlers.NewScenarioHandler(contentStore, log)
	mux.Handle("/api/scenario/", scenarioHandler)

	sessionHandler := handlers.NewSessionHandler(store, contentStore, log)
	mux.Handle("/api/session", sessionHandler)
	mux.Handle("/api/session/", sessionHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing session store", "error", err)
	}

	log.Info("Server exited")
}
