package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	siports "github.com/siportevent/siports"
	"github.com/siportevent/siports/internal/logger"
	"github.com/siportevent/siports/internal/server"
	"github.com/siportevent/siports/internal/version"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:   "siports-ui",
		Short: "SIPORTS web dashboard",
		Long:  `Web dashboard for the SIPORTS event platform: exhibitor directory, packages and account administration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, corsConfigs, err := siports.NewServerConfig()
	if err != nil {
		slog.Error("Failed to load dashboard configuration", slog.String("error", err.Error()))
		return err
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	slog.SetDefault(appLogger)

	appLogger.Info("Starting dashboard",
		slog.String("version", version.Get().Version),
		slog.String("environment", cfg.Environment),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	s, err := server.NewServer(cfg, corsConfigs, appLogger)
	if err != nil {
		appLogger.Error("Failed to create dashboard server", slog.String("error", err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(ctx); err != nil {
		appLogger.Error("Dashboard server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("Dashboard shutdown complete")
	return nil
}
