package markdown

import (
	"context"
	"fmt"
	"os"

	"gitlab.com/golang-commonmark/markdown"

	"github.com/vk/pigeon/internal/article"
	"github.com/vk/pigeon/internal/ctxlog"
	"github.com/vk/pigeon/internal/pigeon"
)

// Module implements the pigeon.Module interface for this package.
type Module struct{}

// renderer is shared by every build. Raw HTML is passed through so that
// articles can carry markup such as <time pubdate>.
var renderer = markdown.New(
	markdown.HTML(true),
	markdown.XHTMLOutput(true),
)

// Render reads the markdown file at source and renders it to HTML.
func Render(ctx context.Context, source string) (string, error) {
	logger := ctxlog.FromContext(ctx).With("action", "markdown", "source", source)

	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("failed to read article: %w", err)
	}
	logger.Debug("Rendering markdown.", "bytes", len(data))

	return renderer.RenderToString(data), nil
}

// Register registers the action with the engine.
func (m *Module) Register(p *pigeon.Pigeon) {
	p.Add(pigeon.Action{
		Name:     "markdown",
		Requires: []pigeon.Key{article.Source},
		Provide:  article.HTML,
		Compute:  pigeon.Func1(Render),
	})
}
