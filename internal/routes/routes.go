package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	siports "github.com/siportevent/siports"
	"github.com/siportevent/siports/internal/auth"
	"github.com/siportevent/siports/internal/handlers"
	"github.com/siportevent/siports/internal/middleware"
	"github.com/siportevent/siports/internal/templates"
)

// RegisterRoutes registers the dashboard routes
func RegisterRoutes(r chi.Router, h *handlers.HandlerService, authService *auth.AuthService, cfg *siports.ServerEnvironment, corsConfigs *siports.CORSConfigs) {
	// health checks - public, JSON
	r.Route("/health", func(r chi.Router) {
		r.Use(middleware.CORS(corsConfigs.Public))

		// check the dashboard can reach the backend
		r.Get("/ready", h.ReadinessHandler)

		// check the dashboard is up
		r.Get("/live", h.LivenessHandler)
	})

	r.Handle("/static/*", templates.StaticHandler())

	// public pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestSizeLimit(cfg.MaxFormSize))

		r.Get("/", h.HandleHome)
		r.Get("/exhibitors", h.HandleExhibitors)
		r.Get("/exhibitors/{id}", h.HandleExhibitor)
		r.Post("/exhibitors/{id}/contact", h.HandleContactExhibitor)
		r.Get("/access-denied", h.HandleAccessDenied)

		r.Get(auth.LoginPath, h.HandleLogin)
		r.With(middleware.RateLimit(cfg.LoginRateRPS, cfg.LoginRateBurst, http.HandlerFunc(h.HandleLoginRateLimited))).Post(auth.LoginPath, h.HandleLoginPost)
		r.Post("/admin/logout", h.HandleLogout)
	})

	// admin pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestSizeLimit(cfg.MaxFormSize))
		r.Use(authService.RequireAuth)
		r.Use(authService.RequireAdmin)

		r.Get("/admin", h.HandleAdminDashboard)
		r.Post("/admin/users/{id}/validate", h.HandleValidateUser)
		r.Post("/admin/users/{id}/reject", h.HandleRejectUser)
	})

	r.NotFound(h.HandleNotFound)
}
