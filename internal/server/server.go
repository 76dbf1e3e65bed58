package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/haskel/runeconomy/internal/analysis"
	"github.com/haskel/runeconomy/internal/config"
	"github.com/haskel/runeconomy/internal/server/middleware"
	"github.com/haskel/runeconomy/internal/storage"
)

type Server struct {
	httpServer *http.Server
	analyzer   *analysis.Analyzer
	store      *storage.Storage // nil when run history is disabled
	config     *config.Config
	logger     *slog.Logger
	version    string
	authConfig *middleware.AuthConfig
}

func New(cfg *config.Config, analyzer *analysis.Analyzer, store *storage.Storage, logger *slog.Logger, version string) *Server {
	authConfig := &middleware.AuthConfig{
		Enabled:  cfg.Auth.Enabled,
		User:     cfg.Auth.User,
		Password: cfg.Auth.Password,
	}

	s := &Server{
		analyzer:   analyzer,
		store:      store,
		config:     cfg,
		logger:     logger,
		version:    version,
		authConfig: authConfig,
	}

	mux := s.setupRoutes()

	handler := middleware.Chain(
		mux,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.SecurityHeaders(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Enabled:           cfg.Server.RateLimit.Enabled,
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		}),
		middleware.Auth(authConfig, "/health"), // Exclude /health from auth
		middleware.MaxBody(cfg.Server.MaxBodyBytes),
	)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// ReloadConfig applies the settings that can change at runtime.
// Analysis options, host and port changes require restart.
func (s *Server) ReloadConfig(cfg *config.Config) {
	s.logger.Info("reloading configuration")

	s.authConfig.Update(cfg.Auth.Enabled, cfg.Auth.User, cfg.Auth.Password)
	s.config = cfg

	s.logger.Info("configuration reloaded",
		"auth_enabled", cfg.Auth.Enabled,
	)
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("server starting",
		"addr", s.httpServer.Addr,
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
