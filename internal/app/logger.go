package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vk/pigeon/internal/ctxlog"
)

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler).With("app", "pigeon")
}

// withRun tags every log line of one build with a fresh run id.
func (a *App) withRun(ctx context.Context) (context.Context, string) {
	runID := uuid.NewString()
	return ctxlog.WithLogger(ctx, a.logger.With("run_id", runID)), runID
}
