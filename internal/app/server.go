package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk/pigeon/internal/ctxlog"
)

// shutdownTimeout bounds the graceful shutdown of the preview server.
const shutdownTimeout = 5 * time.Second

// healthHandler reports that the process is up.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// Handler serves the generated site together with /health and /metrics.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", a.metrics.Handler())
	mux.Handle("/", http.FileServer(http.Dir(a.Site().Output)))
	return mux
}

// Serve builds the site and serves the output directory on addr until ctx
// is cancelled. With watch set, sources are rebuilt on change while serving.
func (a *App) Serve(ctx context.Context, addr string, watch bool) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)

	if !watch {
		if _, err := a.Build(ctx); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.mu.Lock()
	a.httpServer = srv
	a.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("🌐 Preview server starting", "address", fmt.Sprintf("http://%s/", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("preview server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.closeServer(ctx)
	})
	if watch {
		g.Go(func() error {
			return a.Watch(gctx)
		})
	}
	return g.Wait()
}

func (a *App) closeServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	a.mu.RLock()
	srv := a.httpServer
	a.mu.RUnlock()
	if srv == nil {
		logger.Debug("Preview server was not running.")
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down preview server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Preview server shutdown failed", "error", err)
		return err
	}
	logger.Debug("Preview server shut down gracefully.")
	return nil
}
