package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"

	"hpicpulse/internal/app"
	"hpicpulse/pkg/contracts"
)

// Embedded dashboard page and assets
//
//go:embed all:web
var webFiles embed.FS

func main() {
	slog.Info(contracts.GetFullVersionString())

	// Create web filesystem from embedded files
	var webFS fs.FS
	if sub, err := fs.Sub(webFiles, "web"); err == nil {
		webFS = sub
	} else {
		slog.Warn("Dashboard page embedding failed", slog.String("error", err.Error()))
		webFS = nil
	}

	// Create application instance
	application, err := app.NewApplication(webFS)
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
