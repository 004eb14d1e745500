package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/movegen/internal/config"
	"github.com/vk/movegen/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger *slog.Logger
	config *Config
	loader config.Loader
}

// NewApp is the constructor for the main application. Logs go to logW; the
// results of each operation are returned to the caller for presentation.
func NewApp(logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	return &App{
		logger: logger,
		config: cfg,
		loader: loader,
	}
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
