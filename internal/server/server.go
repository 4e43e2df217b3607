package server

import (
	"PortalServer/internal/auth"
	"PortalServer/internal/config"
	"PortalServer/internal/server/handlers"
	"PortalServer/internal/server/middleware"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

const streamPath = "/api/notifications/stream"

type Server struct {
	router *gin.Engine
	cfg    config.HTTPConfig
}

func New(cfg *config.Config, a *auth.Authenticator, h handlers.Handler) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(corsConfig(cfg.HTTP.AllowOrigins)))
	router.Use(gzip.Gzip(gzip.BestSpeed, gzip.WithExcludedPaths([]string{streamPath})))
	router.Use(middleware.Authenticate(a))

	registerRoutes(router, h)

	return &Server{
		router: router,
		cfg:    cfg.HTTP,
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	op := "server.Run"

	serv := http.Server{
		Addr:              s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("server is listening", slog.String("port", s.cfg.Port))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("start to finish server gracefully...")

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctxTimeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := serv.Shutdown(ctxTimeout); err != nil {
		return fmt.Errorf("%s: failed to shutdown server gracefully: %w", op, err)
	}

	slog.Info("finished server gracefully")
	return nil
}
