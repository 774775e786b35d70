package handlers

import (
	"log/slog"
	"net/http"

	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/logger"
)

type homeData struct {
	Health          *client.HealthStatus
	VisitorPackages []client.Package
	PartnerPackages []client.Package
}

// HandleHome shows the backend status and the visitor/partner offers.
// The page degrades instead of failing: sections whose backend call failed are rendered empty with the error banner.
func (h *HandlerService) HandleHome(w http.ResponseWriter, r *http.Request) {
	reqLogger := logger.ContextRequestLogger(r.Context())
	data := homeData{}
	var firstErr error

	health, err := h.APIClient.Health(r.Context())
	if err != nil {
		reqLogger.Warn("Backend health check failed", slog.String("error", err.Error()))
		firstErr = err
	}
	data.Health = health

	data.VisitorPackages, err = h.APIClient.VisitorPackages(r.Context())
	if err != nil {
		reqLogger.Warn("Could not load visitor packages", slog.String("error", err.Error()))
		if firstErr == nil {
			firstErr = err
		}
	}

	data.PartnerPackages, err = h.APIClient.PartnerPackages(r.Context())
	if err != nil {
		reqLogger.Warn("Could not load partner packages", slog.String("error", err.Error()))
		if firstErr == nil {
			firstErr = err
		}
	}

	p := h.page(r, "Accueil", data)
	if firstErr != nil {
		p.Error = client.UserMessage(firstErr)
	}
	h.render(w, r, http.StatusOK, "home", p)
}
