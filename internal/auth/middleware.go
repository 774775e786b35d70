package auth

import (
	"log/slog"
	"net/http"

	appcontext "github.com/siportevent/siports/internal/context"
	"github.com/siportevent/siports/internal/logger"
	"github.com/siportevent/siports/internal/session"
)

const (
	LoginPath        = "/admin/login"
	AccessDeniedPath = "/access-denied"
)

// RequireAuth is middleware that checks the session cookie and adds the session to the request context.
// Requests without a usable session are redirected to the login page (expired or unreadable cookies are cleared first).
func (a *AuthService) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.ContextRequestLogger(r.Context())

		s, status, err := a.CheckSessionStatus(r)
		if err != nil {
			reqLogger.Warn("Unreadable session cookie - redirecting to login",
				slog.String("component", "auth.RequireAuth"),
				slog.String("error", err.Error()),
			)
			a.ClearSessionCookie(w)
			RedirectToLogin(w, r)
			return
		}

		switch status {
		case session.TokenValid:
			reqLogger.Debug("Authentication check successful",
				slog.String("component", "auth.RequireAuth"),
			)
			ctx := appcontext.ContextWithSession(r.Context(), s)
			next.ServeHTTP(w, r.WithContext(ctx))
		case session.TokenExpired:
			reqLogger.Debug("Session expired - redirecting to login",
				slog.String("component", "auth.RequireAuth"),
			)
			a.ClearSessionCookie(w)
			RedirectToLogin(w, r)
		default:
			reqLogger.Debug("Authentication failed - redirecting to login",
				slog.String("component", "auth.RequireAuth"),
				slog.String("status", status.String()),
			)
			RedirectToLogin(w, r)
		}
	})
}

// RequireAdmin is middleware that checks the signed in user has the admin role. Use after RequireAuth.
func (a *AuthService) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.ContextRequestLogger(r.Context())

		s, ok := appcontext.ContextSession(r.Context())
		if !ok {
			reqLogger.Error("RequireAdmin used without RequireAuth",
				slog.String("component", "auth.RequireAdmin"),
			)
			RedirectToLogin(w, r)
			return
		}

		if !s.IsAdmin() {
			reqLogger.Debug("Access denied - account attempted to access admin feature",
				slog.String("component", "auth.RequireAdmin"),
				slog.String("user", s.User.DisplayName()),
				slog.String("role", s.User.EffectiveRole()),
			)
			RedirectToAccessDenied(w, r)
			return
		}

		logger.ContextWithLogAttrs(r.Context(), slog.String("admin_email", s.User.Email))
		next.ServeHTTP(w, r)
	})
}

// RedirectToLogin redirects to the login page for both HTMX and direct requests
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, LoginPath)
}

// RedirectToAccessDenied redirects to the access denied page for both HTMX and direct requests
func RedirectToAccessDenied(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, AccessDeniedPath)
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
