package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/warfront-relay/internal/entity"
)

const statsTimeout = 2 * time.Second

type statsProvider interface {
	Stats(ctx context.Context) (*entity.Stats, error)
}

type handlers struct {
	logger *slog.Logger
	stats  statsProvider
}

func newHandlers(logger *slog.Logger, stats statsProvider) *handlers {
	return &handlers{
		logger: logger,
		stats:  stats,
	}
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write ping response", "error", err)
	}
}

// Stats - the live coordinator snapshot.
func (that *handlers) Stats(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "Stats")

	ctx, cancel := context.WithTimeout(r.Context(), statsTimeout)
	defer cancel()

	stats, err := that.stats.Stats(ctx)
	if err != nil {
		log.Error("failed to get stats", "error", err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(stats); err != nil {
		log.Error("failed to encode stats", "error", err)
	}
}
