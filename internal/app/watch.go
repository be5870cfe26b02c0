package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/pigeon/internal/ctxlog"
	"github.com/vk/pigeon/internal/fsutil"
)

// Watch builds the site, then rebuilds it whenever a source file or the
// site file changes, until ctx is cancelled. Changes are batched over the
// debounce window. Build failures are logged and watching continues.
func (a *App) Watch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := a.addWatches(watcher); err != nil {
		return err
	}

	a.rebuild(ctx)
	logger.Info("👀 Watching for changes.", "input", a.Site().Input)

	var timer *time.Timer
	var timerC <-chan time.Time
	reloadConfig := false

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("Watch stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && a.Site().Recursive {
					_ = a.addDir(watcher, event.Name)
				}
			}
			relevant, isConfig := a.relevant(event.Name)
			if !relevant {
				continue
			}
			reloadConfig = reloadConfig || isConfig
			logger.Debug("Change detected.", "path", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(a.cfg.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(a.cfg.Debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			if reloadConfig {
				reloadConfig = false
				if err := a.reload(ctx); err != nil {
					logger.Error("Site configuration reload failed, keeping the previous one.", "error", err)
				}
			}
			a.rebuild(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}

func (a *App) rebuild(ctx context.Context) {
	if _, err := a.Build(ctx); err != nil && !errors.Is(err, context.Canceled) {
		ctxlog.FromContext(ctx).Error("Build failed.", "error", err)
	}
}

// addWatches watches the input directory, its subdirectories when the site
// is recursive, and the directory of the site file.
func (a *App) addWatches(w *fsnotify.Watcher) error {
	s := a.Site()
	if s.Recursive {
		if err := a.addDir(w, s.Input); err != nil {
			return err
		}
	} else if err := w.Add(s.Input); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.Input, err)
	}

	a.mu.RLock()
	path := a.configPath
	a.mu.RUnlock()
	if path != "" {
		if err := w.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}
	return nil
}

// addDir watches root and every non-hidden directory below it except the
// output directory.
func (a *App) addDir(w *fsnotify.Watcher, root string) error {
	output := filepath.Clean(a.Site().Output)
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && (strings.HasPrefix(d.Name(), ".") || filepath.Clean(p) == output) {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// relevant reports whether a changed path should trigger a rebuild, and
// whether it is the site file.
func (a *App) relevant(path string) (relevant, isConfig bool) {
	a.mu.RLock()
	s, configPath := a.site, a.configPath
	a.mu.RUnlock()

	if configPath != "" && filepath.Clean(path) == filepath.Clean(configPath) {
		return true, true
	}
	rel, err := filepath.Rel(s.Input, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false, false
	}
	ok, err := fsutil.Match(s.Include, filepath.ToSlash(rel))
	return err == nil && ok, false
}
