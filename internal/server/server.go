package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	siports "github.com/siportevent/siports"
	"github.com/siportevent/siports/internal/auth"
	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/handlers"
	"github.com/siportevent/siports/internal/logger"
	"github.com/siportevent/siports/internal/middleware"
	"github.com/siportevent/siports/internal/routes"
	"github.com/siportevent/siports/internal/templates"
)

type Server struct {
	router      *chi.Mux
	config      *siports.ServerEnvironment
	corsConfigs *siports.CORSConfigs
	logger      *slog.Logger
	authService *auth.AuthService
	apiClient   *client.Client
}

// NewServer wires the dashboard: API client, session cookies, templates, middleware and routes
func NewServer(cfg *siports.ServerEnvironment, corsConfigs *siports.CORSConfigs, logger *slog.Logger) (*Server, error) {
	apiClient, err := client.New(client.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create API client: %w", err)
	}

	sealer, err := auth.NewCookieSealer(cfg.SessionSecret)
	if err != nil {
		return nil, err
	}

	renderer, err := templates.New()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:      chi.NewRouter(),
		config:      cfg,
		corsConfigs: corsConfigs,
		logger:      logger,
		authService: auth.NewAuthService(sealer, cfg.IsProd()),
		apiClient:   apiClient,
	}

	s.setupMiddleware()

	handlerService := &handlers.HandlerService{
		AuthService: s.authService,
		APIClient:   s.apiClient,
		Templates:   renderer,
		Environment: cfg.Environment,
	}
	routes.RegisterRoutes(s.router, handlerService, s.authService, cfg, corsConfigs)

	return s, nil
}

// Router exposes the configured router (used by tests)
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
	s.router.Use(middleware.ForwardRequestID)
	s.router.Use(chimiddleware.Timeout(siports.RequestTimeout))
}

// Start runs the dashboard until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening",
			slog.String("address", addr),
			slog.String("api_base_url", s.apiClient.BaseURL()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down dashboard...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), siports.ServerShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server forced to shutdown", slog.String("error", err.Error()))
			return err
		}
	}

	return nil
}
