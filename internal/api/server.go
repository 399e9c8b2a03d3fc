// Package api exposes the scoring pipeline over HTTP.
//
//	GET  /healthz
//	GET  /v1/profiles
//	GET  /v1/zip/:zip/scores
//	POST /v1/score
//	POST /v1/compare
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rewired-gh/rentscore/internal/analyzer"
	"github.com/rewired-gh/rentscore/internal/config"
	"github.com/rewired-gh/rentscore/internal/logger"
	"golang.org/x/time/rate"
)

// Server serves the HTTP API.
type Server struct {
	cfg     config.ServerConfig
	handler *Handler
	router  *gin.Engine
}

// New builds the router. Zip lookups are rate limited per client IP because each
// one spends provider quota; scoring a posted property is not.
func New(cfg config.ServerConfig, a *analyzer.Analyzer) *Server {
	h := NewHandler(a)

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.GET("/profiles", h.Profiles)
	v1.POST("/score", h.Score)
	v1.POST("/compare", h.Compare)

	limiter := NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	v1.GET("/zip/:zip/scores", limiter.RateLimit(), h.ZipScores)

	return &Server{cfg: cfg, handler: h, router: router}
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("Shutting down HTTP API...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
