// Command web serves the forecast HTTP API.
package main

import (
	"log/slog"
	"os"

	"github.com/ManfreddAbrego/forecast-tool/internal/app"
	"github.com/ManfreddAbrego/forecast-tool/internal/infrastructure"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("Application error", slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
	infrastructure.CloseLogFile()
}
