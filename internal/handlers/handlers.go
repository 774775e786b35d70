package handlers

import (
	"log/slog"
	"net/http"

	"github.com/siportevent/siports/internal/auth"
	"github.com/siportevent/siports/internal/client"
	appcontext "github.com/siportevent/siports/internal/context"
	"github.com/siportevent/siports/internal/logger"
	"github.com/siportevent/siports/internal/templates"
)

// HandlerService holds the dependencies shared by the dashboard handlers
type HandlerService struct {
	AuthService *auth.AuthService
	APIClient   *client.Client
	Templates   *templates.Renderer
	Environment string
}

// page returns the common template data for the request (the signed in user, if any)
func (h *HandlerService) page(r *http.Request, title string, data any) templates.Page {
	p := templates.Page{
		Title:       title,
		Environment: h.Environment,
		Data:        data,
	}
	if s, ok := appcontext.ContextSession(r.Context()); ok {
		p.User = s.User
	}
	return p
}

func (h *HandlerService) render(w http.ResponseWriter, r *http.Request, status int, name string, p templates.Page) {
	if err := h.Templates.Render(w, status, name, p); err != nil {
		logger.ContextRequestLogger(r.Context()).Error("Failed to render page",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// renderError shows an error page with the message as the title
func (h *HandlerService) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "error", h.page(r, message, nil))
}

// handleBackendError deals with failed calls made on behalf of a signed in user.
// A 401 means the backend no longer accepts the session token: the cookie is cleared and the user is sent back to the login page.
// Returns true when the response has been written.
func (h *HandlerService) handleBackendError(w http.ResponseWriter, r *http.Request, err error) bool {
	reqLogger := logger.ContextRequestLogger(r.Context())

	switch {
	case client.IsUnauthorized(err):
		reqLogger.Info("Backend rejected the session token - signing out",
			slog.String("error", err.Error()),
		)
		h.AuthService.ClearSessionCookie(w)
		auth.RedirectToLogin(w, r)
		return true
	case client.IsForbidden(err):
		reqLogger.Info("Backend refused the request",
			slog.String("error", err.Error()),
		)
		auth.RedirectToAccessDenied(w, r)
		return true
	}
	return false
}

// statusFor maps a backend error to the status of the dashboard page that shows it
func statusFor(err error) int {
	ce, ok := client.AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ce.Kind {
	case client.KindHTTP:
		if ce.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		if ce.StatusCode >= 400 && ce.StatusCode < 500 {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case client.KindNetwork, client.KindDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to path after a successful form post
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
