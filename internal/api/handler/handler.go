package handler

import (
	"encoding/json"
	"net/http"

	"breaktime.service/internal/core"
	"github.com/rs/zerolog/log"
)

type BreakHandler struct {
	Service *core.BreakService
}

type ScanRequest struct {
	Token string `json:"token"`
}

// Scan toggles the break state of the employee behind the scanned token.
// Business outcomes (unknown employee, already on break) are 200 with success=false;
// only store failures are 5xx.
func (h *BreakHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res := h.Service.Scan(r.Context(), req.Token)

	status := http.StatusOK
	if res.IsStoreFailure() {
		status = http.StatusInternalServerError
	}
	writeJSON(w, r, status, res)
}

// ActiveBreaks lists who is on break right now.
func (h *BreakHandler) ActiveBreaks(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.ActiveBreaks(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to list active breaks")
		writeError(w, http.StatusInternalServerError, "Could not load active breaks")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"count":  len(views),
		"breaks": views,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
