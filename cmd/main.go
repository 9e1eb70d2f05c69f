package main

import (
	"context"
	"os"

	"github.com/orgball2608/insta-story-capture/internal/app"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	log := logger.New(logger.Opts{})

	app := fx.New(
		fx.Logger(log),
		app.Module,
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	// Wait for an interrupt signal or for a single pass to finish
	signal := <-app.Wait()

	// Gracefully shutdown the application
	if err := app.Stop(context.Background()); err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
	os.Exit(signal.ExitCode)
}
