// Command kasegi runs the income tracking API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kasegi/internal/analytics"
	"kasegi/internal/coach"
	"kasegi/internal/httpapi"
	"kasegi/internal/log"
	"kasegi/internal/storage"
)

func main() {
	// Missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	logger := log.New(log.ParseLevel(os.Getenv("KASEGI_LOG_LEVEL")), "main")

	addr := envOr("KASEGI_ADDR", ":8787")
	dbPath := envOr("KASEGI_DB_PATH", defaultDBPath())
	rateLimit := envInt("KASEGI_RATE_LIMIT", 120)

	repo, err := storage.NewRepository(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	engine := analytics.NewEngine(repo)
	motivator := coach.New(repo, engine, nil)

	srv := httpapi.NewServer(httpapi.Config{Addr: addr, RateLimit: rateLimit}, repo, engine, motivator, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "db", dbPath)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "kasegi.db"
	}
	return filepath.Join(dir, "kasegi", "kasegi.db")
}
