package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/information-sharing-networks/shortener-ui/internal/logger"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/config"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/server"
	"github.com/information-sharing-networks/shortener-ui/internal/version"
	"github.com/spf13/cobra"

	// CA roots for https backends when the system has none (e.g. scratch images)
	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	cmd := &cobra.Command{
		Use:   "shortener-ui",
		Short: "URL shortener web user interface",
		Long: `Serves the URL shortener page. Save, search and list requests are sent to the shortener API at API_BASE_URL.

Configuration is read from the environment (see internal/ui/config).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	cmd.Version = version.Get().String()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load UI configuration: %v\n", err)
		return err
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	slog.SetDefault(appLogger)

	appLogger.Info("Starting UI server",
		slog.String("version", version.Get().Version),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("shorten_endpoint", cfg.ShortenEndpoint),
	)

	s, err := server.NewServer(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to create UI server", slog.String("error", err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(ctx); err != nil {
		appLogger.Error("UI server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("UI server shutdown complete")
	return nil
}
