package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/luozhen/go-chat-keeper/internal/config"
	"github.com/luozhen/go-chat-keeper/internal/logger"
)

type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

func NewServer(handlers *Handlers, cfg *config.ServerConfig, logger *logger.Logger) *Server {
	logger.Info().Str("address", cfg.HTTPAddress).Msg("creating stub server...")

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.HTTPAddress,
			Handler: handlers.Init(),
		},
		logger: logger,
	}
}

// RunServer blocks until SIGINT/SIGTERM/SIGQUIT, then shuts down gracefully.
func (s *Server) RunServer() {
	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	go func() {
		<-ctx.Done()

		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			s.logger.Err(err).Msg("HTTP server Shutdown")
		}
		close(idleConnectionsClosed)
	}()

	s.logger.Info().Msg("Launching HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Err(err).Msg("HTTP server ListenAndServe")
	}

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")
}
