package handlers

import (
	"context"
	"log/slog"
	"net/http"

	siports "github.com/siportevent/siports"
	"github.com/siportevent/siports/internal/apperrors"
	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/logger"
	"github.com/siportevent/siports/internal/response"
	"github.com/siportevent/siports/internal/version"
)

type healthResponse struct {
	Status  string               `json:"status"`
	Version string               `json:"version"`
	Backend *client.HealthStatus `json:"backend,omitempty"`
}

// LivenessHandler reports that the dashboard process is serving requests
func (h *HandlerService) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	response.RespondWithJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Get().Version,
	})
}

// ReadinessHandler reports whether the SIPORTS backend answers its health probe
func (h *HandlerService) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), siports.ReadinessTimeout)
	defer cancel()

	backend, err := h.APIClient.Health(ctx)
	if err != nil {
		logger.ContextRequestLogger(r.Context()).Warn("Backend not ready", slog.String("error", err.Error()))
		response.RespondWithError(w, r, http.StatusServiceUnavailable, apperrors.ErrCodeBackendUnavailable, client.UserMessage(err))
		return
	}

	response.RespondWithJSON(w, http.StatusOK, healthResponse{
		Status:  "ready",
		Version: version.Get().Version,
		Backend: backend,
	})
}
