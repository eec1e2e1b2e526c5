package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ziggway/insight/internal/config"
	"github.com/ziggway/insight/internal/infrastructure"
)

// Server wires infrastructure, the mounted API modules, and the HTTP
// listener into one startable unit.
type Server struct {
	infra     *infrastructure.Infrastructure
	modules   *Modules
	http      *http.Server
	drainTime time.Duration
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
			WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		},
		drainTime: cfg.Server.ShutdownTimeoutDuration(),
	}, nil
}

// Start brings up infrastructure, begins serving HTTP, and registers
// graceful listener shutdown with the lifecycle coordinator.
func (s *Server) Start() error {
	logger := s.infra.Logger

	if err := s.infra.Start(); err != nil {
		return err
	}

	go func() {
		logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	s.infra.Lifecycle.OnShutdown(func() {
		<-s.infra.Lifecycle.Context().Done()
		logger.Info("shutting down server")

		// Bounded independently of the canceled lifecycle context so
		// in-flight requests can drain.
		ctx, cancel := context.WithTimeout(context.Background(), s.drainTime)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", "error", err)
			return
		}
		logger.Info("server shutdown complete")
	})

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
