package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vk/pigeon/internal/config"
	"github.com/vk/pigeon/internal/ctxlog"
	"github.com/vk/pigeon/internal/metrics"
	"github.com/vk/pigeon/internal/notify"
	"github.com/vk/pigeon/internal/pigeon"
	"github.com/vk/pigeon/internal/site"
)

var tracer = otel.Tracer("pigeon/app")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *Config
	builder  *site.Builder
	metrics  *metrics.Metrics
	notifier notify.Notifier

	mu         sync.RWMutex
	site       *config.Site
	configPath string
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own logger, metrics registry and site settings.
// modules replace the core article pipeline when given.
func NewApp(outW io.Writer, cfg *Config, modules ...pigeon.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	s, path, err := loadSite(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Site configuration resolved.", "input", s.Input, "output", s.Output, "config", path)

	n, err := notify.New(s.Notify)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	b := site.NewBuilder(m, modules...)
	if err := b.Check(); err != nil {
		return nil, err
	}
	logger.Debug("Article pipeline validated.", "actions", b.Engine().Len())

	return &App{
		outW:       outW,
		logger:     logger,
		cfg:        cfg,
		builder:    b,
		metrics:    m,
		notifier:   n,
		site:       s,
		configPath: path,
	}, nil
}

// Site returns the resolved site settings.
func (a *App) Site() *config.Site {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.site
}

// Metrics returns the application's metrics.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Build generates the site once and notifies live-reload listeners.
// Notification failures are logged, never returned.
func (a *App) Build(ctx context.Context) (*site.Result, error) {
	ctx, runID := a.withRun(ctx)
	logger := ctxlog.FromContext(ctx)

	ctx, span := tracer.Start(ctx, "pigeon.Build")
	defer span.End()
	span.SetAttributes(attribute.String("pigeon.run_id", runID))

	a.mu.RLock()
	s, notifier := a.site, a.notifier
	a.mu.RUnlock()

	res, err := a.builder.Build(ctx, s)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("build failed: %w", err)
	}
	span.SetAttributes(attribute.Int("pigeon.articles", len(res.Articles)))

	ev := notify.Event{RunID: runID, Articles: len(res.Articles), Duration: res.Duration, Time: time.Now()}
	if err := notifier.Notify(ctx, ev); err != nil {
		logger.Warn("Live-reload notification failed.", "error", err)
	}
	return res, nil
}

// Plan returns the pipeline actions in execution order.
func (a *App) Plan() ([]pigeon.Action, error) {
	return a.builder.Engine().Resolve()
}

// Free returns the keys the pipeline expects every article to start with.
func (a *App) Free() []pigeon.Key {
	return a.builder.Engine().Free()
}

// Close releases the notifier connection.
func (a *App) Close() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.notifier.Close()
}

// reload re-reads the site configuration, keeping the old one on failure.
func (a *App) reload(ctx context.Context) error {
	s, path, err := loadSite(ctx, a.cfg)
	if err != nil {
		return err
	}
	n, err := notify.New(s.Notify)
	if err != nil {
		return err
	}

	a.mu.Lock()
	old := a.notifier
	a.site, a.configPath, a.notifier = s, path, n
	a.mu.Unlock()

	_ = old.Close()
	ctxlog.FromContext(ctx).Info("Site configuration reloaded.", "config", path)
	return nil
}
