package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/siportevent/siports/internal/client"
	appcontext "github.com/siportevent/siports/internal/context"
	"github.com/siportevent/siports/internal/logger"
)

const pendingPageSize = 50

type adminData struct {
	Stats   *client.DashboardStats
	Pending *client.UserPage
}

// HandleAdminDashboard shows the platform statistics and the accounts waiting for validation
func (h *HandlerService) HandleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	s, ok := appcontext.ContextSession(r.Context())
	if !ok {
		h.renderError(w, r, http.StatusInternalServerError, "Session introuvable")
		return
	}

	p := h.page(r, "Administration", nil)
	p.Notice = r.URL.Query().Get("notice")
	data := adminData{}

	stats, err := h.APIClient.DashboardStats(r.Context(), s.AccessToken)
	if err != nil {
		if h.handleBackendError(w, r, err) {
			return
		}
		reqLogger.Error("Could not load dashboard stats", slog.String("error", err.Error()))
		p.Error = client.UserMessage(err)
	}
	data.Stats = stats

	pending, err := h.APIClient.PendingUsers(r.Context(), s.AccessToken, 1, pendingPageSize)
	if err != nil {
		if h.handleBackendError(w, r, err) {
			return
		}
		reqLogger.Error("Could not load pending users", slog.String("error", err.Error()))
		if p.Error == "" {
			p.Error = client.UserMessage(err)
		}
	}
	data.Pending = pending

	p.Data = data
	h.render(w, r, http.StatusOK, "admin", p)
}

// HandleValidateUser approves a pending account
func (h *HandlerService) HandleValidateUser(w http.ResponseWriter, r *http.Request) {
	s, ok := appcontext.ContextSession(r.Context())
	if !ok {
		h.renderError(w, r, http.StatusInternalServerError, "Session introuvable")
		return
	}
	userID := chi.URLParam(r, "id")

	res, err := h.APIClient.ValidateUser(r.Context(), s.AccessToken, userID, s.User.Email)
	h.finishUserAction(w, r, userID, "validated", res, err)
}

// HandleRejectUser rejects a pending account. The form must include a reason.
func (h *HandlerService) HandleRejectUser(w http.ResponseWriter, r *http.Request) {
	s, ok := appcontext.ContextSession(r.Context())
	if !ok {
		h.renderError(w, r, http.StatusInternalServerError, "Session introuvable")
		return
	}
	userID := chi.URLParam(r, "id")

	reason := strings.TrimSpace(r.PostFormValue("reason"))
	if reason == "" {
		redirect(w, r, "/admin?notice="+url.QueryEscape("Merci d'indiquer le motif du rejet."))
		return
	}

	res, err := h.APIClient.RejectUser(r.Context(), s.AccessToken, userID, client.RejectRequest{
		Reason:     reason,
		Comment:    strings.TrimSpace(r.PostFormValue("comment")),
		AdminEmail: s.User.Email,
	})
	h.finishUserAction(w, r, userID, "rejected", res, err)
}

func (h *HandlerService) finishUserAction(w http.ResponseWriter, r *http.Request, userID, action string, res *client.ActionResponse, err error) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	if err != nil {
		if h.handleBackendError(w, r, err) {
			return
		}
		reqLogger.Error("User action failed",
			slog.String("user_id", userID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		p := h.page(r, "Administration", adminData{})
		p.Error = client.UserMessage(err)
		h.render(w, r, statusFor(err), "admin", p)
		return
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.String("user_id", userID),
		slog.String("action", action),
	)

	notice := res.Message
	if notice == "" {
		notice = "Compte mis à jour."
	}
	redirect(w, r, "/admin?notice="+url.QueryEscape(notice))
}
