package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	logger *slog.Logger
	server *http.Server
}

func NewServer(logger *slog.Logger, port string, handler http.Handler) *Server {
	return &Server{
		logger: logger.With("component", "http"),
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// Start - listens until Shutdown is called.
func (that *Server) Start() error {
	listener, err := net.Listen("tcp", that.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", that.server.Addr, err)
	}

	return that.Serve(listener)
}

// Serve - serves on an existing listener until Shutdown is called.
func (that *Server) Serve(listener net.Listener) error {
	that.logger.Info("HTTP server started", "addr", listener.Addr().String())

	if err := that.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// Shutdown - stops accepting connections and waits for in-flight requests.
func (that *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := that.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	that.logger.Info("HTTP server stopped")

	return nil
}
