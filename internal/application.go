package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/warfront-relay/internal/config"
	"github.com/rocketscienceinc/warfront-relay/internal/pkg"
	"github.com/rocketscienceinc/warfront-relay/internal/relay"
	"github.com/rocketscienceinc/warfront-relay/internal/repository"
	"github.com/rocketscienceinc/warfront-relay/internal/repository/storage"
	"github.com/rocketscienceinc/warfront-relay/internal/scheduler"
	"github.com/rocketscienceinc/warfront-relay/internal/usecase"
	"github.com/rocketscienceinc/warfront-relay/transport/rest"
	"github.com/rocketscienceinc/warfront-relay/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	wsServer := websocket.New(logger, websocket.Options{
		ReadLimit:  conf.WebSocket.ReadLimit,
		SendBuffer: conf.WebSocket.SendBuffer,
	})

	coordinator := usecase.NewCoordinator(logger, relay.New(logger, wsServer), pkg.NewRandom(), usecase.Options{
		StrictTurns:      conf.Session.StrictTurns,
		RoomCodeAttempts: conf.Room.CodeAttempts,
	})

	coordinatorDone := make(chan struct{})
	go func() {
		defer close(coordinatorDone)
		if err := coordinator.Run(ctx); err != nil {
			log.Error("coordinator stopped with error", "error", err)
		}
	}()

	if conf.Redis.Enabled {
		stop, err := startStatsPublisher(ctx, logger, conf, coordinator)
		if err != nil {
			return err
		}
		defer stop()
	}

	router := rest.NewRouter(logger, coordinator, wsServer.Handler(ctx, coordinator))
	httpServer := rest.NewServer(logger, conf.HTTPPort, router)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := httpServer.Start(); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	if err := httpServer.Shutdown(context.Background()); err != nil {
		log.Error("could not shutdown HTTP server", "error", err)
	}

	wsServer.Close()
	<-coordinatorDone

	return nil
}

// startStatsPublisher - mirrors coordinator snapshots into redis. The returned func stops
// the publisher and closes the connection.
func startStatsPublisher(ctx context.Context, logger *slog.Logger, conf *config.Config, coordinator *usecase.Coordinator) (func(), error) {
	log := logger.With("component", "app")

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	statsRepo := repository.NewStatsRepository(redisStorage.Connection, conf.Redis.KeyPrefix)

	publisher, err := scheduler.NewStatsPublisher(logger, coordinator, statsRepo, conf.Stats.Interval)
	if err == nil {
		err = publisher.Start(ctx)
	}
	if err != nil {
		_ = redisStorage.Close()
		return nil, fmt.Errorf("could not start stats publisher: %w", err)
	}

	return func() {
		if err := publisher.Shutdown(); err != nil {
			log.Error("could not stop stats publisher", "error", err)
		}

		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}, nil
}
