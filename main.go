package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"simlab/internal"
	"simlab/internal/config"
	"simlab/internal/container"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Load application configuration (.env + environment)
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))

	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	report, err := appContainer.Lab.Run(ctx)
	if err != nil {
		logger.Error("Lab run failed: %v", err)
		appContainer.Shutdown(context.Background())
		os.Exit(1)
	}

	if err := appContainer.Markdown.Render(os.Stdout, report); err != nil {
		logger.Error("Failed to render report: %v", err)
	}
	logger.Info("Run %s complete (fingerprint %s)", report.Manifest.RunID, report.Manifest.Fingerprint)
}
