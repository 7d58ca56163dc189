package handler

import (
	"context"
	"net/http"
)

// Pinger is the health-check view of the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler carries the cross-cutting HTTP concerns: health and CORS.
type Handler struct {
	db     Pinger
	origin string
}

// New creates a Handler. origin is the frontend origin allowed by CORS.
func New(db Pinger, origin string) *Handler {
	return &Handler{db: db, origin: origin}
}

// CORS allows the configured frontend origin and answers preflight requests.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
