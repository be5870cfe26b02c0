package site

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk/pigeon/internal/article"
	"github.com/vk/pigeon/internal/config"
	"github.com/vk/pigeon/internal/ctxlog"
	"github.com/vk/pigeon/internal/fsutil"
	"github.com/vk/pigeon/internal/metrics"
	"github.com/vk/pigeon/internal/pigeon"
	"github.com/vk/pigeon/modules/htmldoc"
	"github.com/vk/pigeon/modules/markdown"
	"github.com/vk/pigeon/modules/page"
	"github.com/vk/pigeon/modules/writeout"
)

// IndexFile is the name of the generated article list.
const IndexFile = "index.html"

var (
	// ErrNoSources is returned when no file matches the include patterns.
	ErrNoSources = errors.New("no source files found")
	// ErrDuplicateFilename is returned when two articles map to one page.
	ErrDuplicateFilename = errors.New("duplicate page file name")
)

// coreModules is the article pipeline compiled into the binary.
var coreModules = []pigeon.Module{
	&markdown.Module{},
	&htmldoc.Module{},
	&page.Module{},
	&writeout.Module{},
}

// initialKeys are the attributes every article execution starts with.
var initialKeys = []pigeon.Key{article.Source, article.Options}

// Builder runs the article pipeline over a directory of sources.
type Builder struct {
	engine  *pigeon.Pigeon
	metrics *metrics.Metrics
}

// Result summarizes a finished build.
type Result struct {
	Articles []article.Summary
	Index    string
	Duration time.Duration
}

// NewBuilder creates a builder whose engine holds the given modules, or the
// core pipeline when none are given. m may be nil.
func NewBuilder(m *metrics.Metrics, modules ...pigeon.Module) *Builder {
	if len(modules) == 0 {
		modules = coreModules
	}
	engine := pigeon.New().Use(modules...)
	if m != nil {
		engine.Observe(m.ObserveAction)
	}
	return &Builder{engine: engine, metrics: m}
}

// Engine returns the builder's engine.
func (b *Builder) Engine() *pigeon.Pigeon {
	return b.engine
}

// Check verifies that the pipeline resolves and that its free keys are
// covered by the attributes each article starts with.
func (b *Builder) Check() error {
	if _, err := b.engine.Resolve(); err != nil {
		return fmt.Errorf("invalid article pipeline: %w", err)
	}
	initial := pigeon.Attributes{}
	for _, k := range initialKeys {
		initial[k] = nil
	}
	if err := b.engine.Validate(initial); err != nil {
		return fmt.Errorf("article pipeline has unsatisfied requirements: %w", err)
	}
	return nil
}

// Build generates one page per source file and the index page. The first
// failing article cancels the others; its error names the source file.
// Pages are staged in memory and only written once every article succeeded
// and no two articles share a file name.
func (b *Builder) Build(ctx context.Context, s *config.Site) (res *Result, err error) {
	start := time.Now()
	logger := ctxlog.FromContext(ctx).With("input", s.Input, "output", s.Output)
	ctx = ctxlog.WithLogger(ctx, logger)

	articles := 0
	defer func() {
		if b.metrics != nil {
			b.metrics.ObserveBuild(time.Since(start), articles, err)
		}
	}()

	if err := b.Check(); err != nil {
		return nil, err
	}

	sources, err := fsutil.FindFiles(s.Input, s.Include, s.Recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.Input, err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s matching %v", ErrNoSources, s.Input, s.Include)
	}
	logger.Info("Building site.", "sources", len(sources), "workers", s.Workers)

	opts := &article.SiteOptions{
		Title:      s.Title,
		Stylesheet: s.Stylesheet,
		OutputDir:  s.Output,
		Params:     s.Params,
	}
	staged := newStagedPages()
	stagingOpts := *opts
	stagingOpts.Sink = staged

	summaries := make([]article.Summary, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	if s.Workers > 0 {
		g.SetLimit(s.Workers)
	}
	for i, src := range sources {
		g.Go(func() error {
			summary, err := b.buildArticle(gctx, src, &stagingOpts)
			if b.metrics != nil {
				b.metrics.ObserveArticle(err)
			}
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkDuplicates(summaries); err != nil {
		return nil, err
	}
	if err := staged.flush(ctx, opts); err != nil {
		return nil, err
	}
	articles = len(summaries)

	sortNewestFirst(summaries)
	index, err := writeIndex(ctx, summaries, opts)
	if err != nil {
		return nil, err
	}

	res = &Result{Articles: summaries, Index: index, Duration: time.Since(start)}
	logger.Info("Site built.", "articles", len(summaries), "duration", res.Duration)
	return res, nil
}

func (b *Builder) buildArticle(ctx context.Context, src string, opts *article.SiteOptions) (article.Summary, error) {
	ctx = ctxlog.With(ctx, "source", src)
	attrs, err := b.engine.Execute(ctx, pigeon.Attributes{
		article.Source:  src,
		article.Options: opts,
	})
	if err != nil {
		return article.Summary{}, fmt.Errorf("building %s: %w", src, err)
	}
	ctxlog.FromContext(ctx).Debug("Article built.", "filename", attrs[article.Filename])
	return article.Summarize(attrs), nil
}

// checkDuplicates fails when two articles map to the same file name. The
// summaries are in source order, so the error always names the same pair.
func checkDuplicates(summaries []article.Summary) error {
	seen := make(map[string]string, len(summaries))
	for _, s := range summaries {
		if prev, ok := seen[s.Filename]; ok {
			return fmt.Errorf("%w: %s and %s both map to %s", ErrDuplicateFilename, prev, s.Source, s.Filename)
		}
		seen[s.Filename] = s.Source
	}
	return nil
}

// stagedPages collects pages from concurrent article builds.
type stagedPages struct {
	mu    sync.Mutex
	pages map[string]string
}

func newStagedPages() *stagedPages {
	return &stagedPages{pages: make(map[string]string)}
}

func (p *stagedPages) Put(filename, output string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages[filename] = output
	return nil
}

// flush writes every staged page to the output directory in name order.
func (p *stagedPages) flush(ctx context.Context, opts *article.SiteOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.pages))
	for name := range p.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeout.Write(ctx, p.pages[name], name, opts); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}
