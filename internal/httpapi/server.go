// Package httpapi serves the kasegi REST API consumed by the terminal client.
package httpapi

import (
	"net/http"
	"time"

	"kasegi/internal/analytics"
	"kasegi/internal/coach"
	"kasegi/internal/log"
	"kasegi/internal/storage"
)

// Config tunes the server.
type Config struct {
	Addr string
	// RateLimit is requests per client per minute; 0 disables limiting.
	RateLimit int
}

// Server is the kasegi API server.
type Server struct {
	http.Server

	repo    *storage.Repository
	engine  *analytics.Engine
	coach   *coach.Coach
	logger  *log.Logger
	limiter *rateLimiter
}

// NewServer wires routes and middleware around the given collaborators.
func NewServer(cfg Config, repo *storage.Repository, engine *analytics.Engine, motivator *coach.Coach, logger *log.Logger) *Server {
	s := &Server{
		repo:   repo,
		engine: engine,
		coach:  motivator,
		logger: logger.WithComponent("httpapi"),
	}
	if cfg.RateLimit > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit, time.Minute)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("GET /api/income-sources", s.handleListSources)
	mux.HandleFunc("POST /api/income-sources", s.handleCreateSource)
	mux.HandleFunc("PUT /api/income-sources/{id}", s.handleUpdateSource)
	mux.HandleFunc("DELETE /api/income-sources/{id}", s.handleDeleteSource)
	mux.HandleFunc("GET /api/income-sources/{id}/history", s.handleGoalHistory)

	mux.HandleFunc("GET /api/daily-logs", s.handleListLogs)
	mux.HandleFunc("POST /api/daily-logs", s.handleCreateLog)
	mux.HandleFunc("PUT /api/daily-logs/{id}", s.handleUpdateLog)
	mux.HandleFunc("DELETE /api/daily-logs/{id}", s.handleDeleteLog)

	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/coach", s.handleCoach)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)

	s.Server = http.Server{
		Addr:           cfg.Addr,
		Handler:        s.withLogging(s.withRateLimit(mux)),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}
