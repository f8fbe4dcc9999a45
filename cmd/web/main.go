// Command web serves the upload, report and progress API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/hdmquan/logos-living-capital/internal/app"
	"github.com/hdmquan/logos-living-capital/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to the standard search locations)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create application instance
	application, err := app.NewApplication(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start application
	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
