package writeout

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/pigeon/internal/article"
	"github.com/vk/pigeon/internal/ctxlog"
	"github.com/vk/pigeon/internal/pigeon"
)

// Module implements the pigeon.Module interface for this package.
type Module struct{}

// Write stores output as filename inside the output directory, creating the
// directory when needed. When the options carry a sink the page is handed to
// it instead. It provides no attribute.
func Write(ctx context.Context, output, filename string, opts *article.SiteOptions) error {
	if opts == nil || opts.OutputDir == "" {
		return errors.New("no output directory configured")
	}
	if filename == "" || filepath.Base(filename) != filename {
		return fmt.Errorf("invalid page file name %q", filename)
	}
	if opts.Sink != nil {
		return opts.Sink.Put(filename, output)
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("Page written.", "path", path, "bytes", len(output))
	return nil
}

// Register registers the action with the engine.
func (m *Module) Register(p *pigeon.Pigeon) {
	p.Add(pigeon.Action{
		Name:     "write_out",
		Requires: []pigeon.Key{article.Output, article.Filename, article.Options},
		Compute:  pigeon.Effect3(Write),
	})
}
