package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store    Pinger
	Location *time.Location
}

// Health reports liveness plus store connectivity and the server's local time.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code, store := "ok", http.StatusOK, "connected"
	if err := h.Store.Ping(ctx); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Health check: store unreachable")
		status, code, store = "degraded", http.StatusServiceUnavailable, "unreachable"
	}

	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}

	writeJSON(w, r, code, map[string]string{
		"status":     status,
		"store":      store,
		"local_time": time.Now().In(loc).Format(time.RFC3339),
		"timezone":   loc.String(),
	})
}
