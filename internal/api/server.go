package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wellsgz/linkcheck/internal/config"
	"github.com/wellsgz/linkcheck/internal/hint"
	"github.com/wellsgz/linkcheck/internal/runner"
)

// Server serves the control API, the speed endpoints and metrics
type Server struct {
	router *gin.Engine
	hub    *Hub
	http   *http.Server

	// Runs started over HTTP or the socket outlive their request and are
	// cancelled by Shutdown
	runCtx    context.Context
	cancelRun context.CancelFunc
}

// NewServer wires the router around r and hints
func NewServer(cfg *config.Config, r *runner.Runner, hints *hint.Feed) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{router: gin.New(), hub: NewHub()}
	s.runCtx, s.cancelRun = context.WithCancel(context.Background())

	s.router.Use(ErrorHandler(), RequestLogger(), CORS())
	s.hub.SetRunner(s.runCtx, r)
	SetupRoutes(s.router, NewHandler(s.runCtx, cfg, r, hints), s.hub)

	return s
}

// Start listens on address and blocks until the server is shut down
func (s *Server) Start(address string) error {
	// Speed endpoints stream for a whole test window, so only headers and
	// idle connections are bounded
	s.http = &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("[API] Listening on %s", address)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartAsync runs the hub and the listener in the background
func (s *Server) StartAsync(address string) {
	go s.hub.Run()
	go func() {
		if err := s.Start(address); err != nil {
			log.Printf("[API] %v", err)
		}
	}()
}

// Shutdown cancels server-started runs, disconnects WebSocket clients and
// drains in-flight requests within timeout
func (s *Server) Shutdown(timeout time.Duration) error {
	s.cancelRun()
	s.hub.Stop()

	if s.http == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Println("[API] Server stopped")
	return nil
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Hub returns the WebSocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}
