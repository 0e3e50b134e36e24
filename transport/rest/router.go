package rest

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
)

// NewRouter - mounts /ping, /stats and the WebSocket endpoint /ws.
func NewRouter(logger *slog.Logger, stats statsProvider, ws http.Handler) http.Handler {
	logger = logger.With("component", "router")
	h := newHandlers(logger, stats)

	r := mux.NewRouter()
	r.Use(recovery(logger))

	r.HandleFunc("/ping", h.Ping).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	r.Handle("/ws", ws).Methods(http.MethodGet)

	return r
}

func recovery(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"stack", string(debug.Stack()),
						"path", r.URL.Path,
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
