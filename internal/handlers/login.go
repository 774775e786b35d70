package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/siportevent/siports/internal/auth"
	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/logger"
	"github.com/siportevent/siports/internal/session"
)

type loginData struct {
	Email string
}

// HandleLogin renders the login page, or goes straight to the dashboard when the session is still valid
func (h *HandlerService) HandleLogin(w http.ResponseWriter, r *http.Request) {
	s, status, err := h.AuthService.CheckSessionStatus(r)
	if err == nil && status == session.TokenValid && s.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login", h.page(r, "Connexion", loginData{}))
}

// HandleLoginRateLimited renders the login form again when too many attempts were made
func (h *HandlerService) HandleLoginRateLimited(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "Connexion", loginData{Email: strings.TrimSpace(r.PostFormValue("email"))})
	p.Error = "Trop de tentatives de connexion, merci de patienter quelques instants."
	h.render(w, r, http.StatusTooManyRequests, "login", p)
}

// HandleLoginPost authenticates against the backend and stores the session in a sealed cookie
func (h *HandlerService) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	renderLoginError := func(status int, message string) {
		p := h.page(r, "Connexion", loginData{Email: email})
		p.Error = message
		h.render(w, r, status, "login", p)
	}

	if email == "" || password == "" {
		renderLoginError(http.StatusUnprocessableEntity, "Merci de renseigner votre email et votre mot de passe.")
		return
	}

	res, err := h.APIClient.Login(r.Context(), email, password)
	if err != nil {
		reqLogger.Warn("Authentication failed", slog.String("error", err.Error()))
		status := statusFor(err)
		if client.IsUnauthorized(err) {
			status = http.StatusUnauthorized
		}
		renderLoginError(status, client.UserMessage(err))
		return
	}
	if res.AccessToken == "" {
		reqLogger.Error("Login response did not include an access token")
		renderLoginError(http.StatusBadGateway, "Réponse inattendue du serveur, merci de réessayer.")
		return
	}

	s := session.FromLogin(res, time.Now())

	// older backends do not return the profile with the token
	if s.User == nil {
		me, err := h.APIClient.Me(r.Context(), s.AccessToken)
		if err != nil {
			reqLogger.Error("Could not load profile after login", slog.String("error", err.Error()))
			renderLoginError(statusFor(err), client.UserMessage(err))
			return
		}
		s.User = &me.Profile
	}

	if !s.IsAdmin() {
		reqLogger.Info("Non admin account attempted to sign in to the dashboard",
			slog.String("role", s.User.EffectiveRole()),
		)
		renderLoginError(http.StatusForbidden, "Ce tableau de bord est réservé aux administrateurs.")
		return
	}

	if err := h.AuthService.SetSessionCookie(w, s); err != nil {
		reqLogger.Error("Failed to set session cookie", slog.String("error", err.Error()))
		renderLoginError(http.StatusInternalServerError, "Une erreur est survenue, merci de réessayer.")
		return
	}

	logger.ContextWithLogAttrs(r.Context(), slog.String("admin_email", s.User.Email))

	redirect(w, r, "/admin")
}

// HandleLogout clears the session cookie. The backend token is not revoked (the backend has no logout endpoint).
func (h *HandlerService) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.AuthService.ClearSessionCookie(w)
	auth.RedirectToLogin(w, r)
}
