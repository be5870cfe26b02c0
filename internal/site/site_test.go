package site

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pigeon/internal/article"
	"github.com/vk/pigeon/internal/config"
	"github.com/vk/pigeon/internal/metrics"
	"github.com/vk/pigeon/internal/pigeon"
	tu "github.com/vk/pigeon/internal/testutil"
)

const (
	hello = "# Hello\n\n<time pubdate datetime=\"2012-03-04\">4 March</time>\n\nFirst post.\n"
	later = "# Later\n\n<time pubdate datetime=\"2013-01-02\">2 Jan</time>\n\nSecond post.\n"
	bare  = "Just text, no heading and no date.\n"
)

func siteConfig(t *testing.T, input string, mutate ...func(*config.Site)) *config.Site {
	t.Helper()
	s := &config.Site{Input: input, Output: filepath.Join(t.TempDir(), "public")}
	for _, m := range mutate {
		m(s)
	}
	s, err := config.Normalize(s)
	require.NoError(t, err)
	return s
}

func TestBuild_WritesPagesAndIndex(t *testing.T) {
	ctx, _ := tu.Context(t)
	input := tu.NewSite(t, map[string]string{
		"hello.markdown": hello,
		"later.markdown": later,
		"notes.md":       bare,
		"ignored.txt":    "# Not an article\n",
	})
	s := siteConfig(t, input, func(s *config.Site) {
		s.Title = "startlelog"
		s.Stylesheet = "/style.css"
	})

	res, err := NewBuilder(nil).Build(ctx, s)
	require.NoError(t, err)

	got := make([]string, 0, len(res.Articles))
	for _, a := range res.Articles {
		got = append(got, a.Filename)
	}
	want := []string{"2013-01-02-later.html", "2012-03-04-hello.html", "undated-notes.html"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("article order mismatch (-want +got):\n%s", diff)
	}

	for _, name := range want {
		assert.FileExists(t, filepath.Join(s.Output, name))
	}
	page := tu.ReadFile(t, filepath.Join(s.Output, "2012-03-04-hello.html"))
	assert.Contains(t, page, "<title>startlelog</title>")
	assert.Contains(t, page, "<h1>Hello</h1>")
	assert.Contains(t, page, `href="/style.css"`)

	assert.Equal(t, filepath.Join(s.Output, IndexFile), res.Index)
	index := tu.ReadFile(t, res.Index)
	assert.Contains(t, index, "<title>startlelog</title>")
	assert.Contains(t, index, `<time datetime="2012-03-04T00:00:00Z">4 Mar 12</time>`)
	assert.Contains(t, index, `<a class="article" href="2013-01-02-later.html">Later</a>`)
	assert.Contains(t, index, `<time class="unknown"></time>`)
	assert.Contains(t, index, `<a class="article empty" href="undated-notes.html"></a>`)
}

func TestBuild_DefaultOutputIsInput(t *testing.T) {
	ctx, _ := tu.Context(t)
	input := tu.NewSite(t, map[string]string{"hello.markdown": hello})
	s, err := config.Normalize(&config.Site{Input: input})
	require.NoError(t, err)

	_, err = NewBuilder(nil).Build(ctx, s)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(input, "2012-03-04-hello.html"))
	assert.Contains(t, tu.ReadFile(t, filepath.Join(input, IndexFile)), "<title>pigeon</title>")
}

func TestBuild_Recursive(t *testing.T) {
	ctx, _ := tu.Context(t)
	input := tu.NewSite(t, map[string]string{
		"hello.markdown":       hello,
		"archive/old.markdown": later,
	})

	res, err := NewBuilder(nil).Build(ctx, siteConfig(t, input))
	require.NoError(t, err)
	assert.Len(t, res.Articles, 1)

	res, err = NewBuilder(nil).Build(ctx, siteConfig(t, input, func(s *config.Site) { s.Recursive = true }))
	require.NoError(t, err)
	assert.Len(t, res.Articles, 2)
}

func TestBuild_NoSources(t *testing.T) {
	ctx, _ := tu.Context(t)
	input := tu.NewSite(t, map[string]string{"readme.txt": "x"})

	_, err := NewBuilder(nil).Build(ctx, siteConfig(t, input))
	require.ErrorIs(t, err, ErrNoSources)
}

func TestBuild_FailureNamesSource(t *testing.T) {
	ctx, _ := tu.Context(t)
	input := tu.NewSite(t, map[string]string{"hello.markdown": hello})
	s := siteConfig(t, input)

	boom := errors.New("template exploded")
	failing := moduleFunc(func(p *pigeon.Pigeon) {
		p.Register(pigeon.Keys("html"), "broken", func(context.Context, []pigeon.Value) (pigeon.Value, error) {
			return nil, boom
		})
	})
	b := NewBuilder(nil, append(append([]pigeon.Module{}, coreModules...), failing)...)

	_, err := b.Build(ctx, s)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), filepath.Join(input, "hello.markdown"))

	var computeErr *pigeon.ComputeError
	require.ErrorAs(t, err, &computeErr)
	assert.Equal(t, pigeon.Key("broken"), computeErr.Provide)
}

func TestBuild_DuplicateFilenameWritesNothing(t *testing.T) {
	ctx, _ := tu.Context(t)
	input := tu.NewSite(t, map[string]string{
		"a.markdown": hello,
		"b.markdown": hello,
		"c.markdown": hello,
		"d.markdown": later,
	})
	s := siteConfig(t, input, func(s *config.Site) { s.Workers = 4 })

	for range 5 {
		_, err := NewBuilder(nil).Build(ctx, s)
		require.ErrorIs(t, err, ErrDuplicateFilename)
		assert.Contains(t, err.Error(), filepath.Join(input, "a.markdown")+" and "+filepath.Join(input, "b.markdown"))
		assert.Contains(t, err.Error(), "2012-03-04-hello.html")
		assert.NoDirExists(t, s.Output)
	}
}

func TestStagedPages_FlushWritesInNameOrder(t *testing.T) {
	ctx, _ := tu.Context(t)
	out := filepath.Join(t.TempDir(), "public")
	staged := newStagedPages()
	require.NoError(t, staged.Put("b.html", "second"))
	require.NoError(t, staged.Put("a.html", "first"))

	require.NoError(t, staged.flush(ctx, &article.SiteOptions{OutputDir: out}))
	assert.Equal(t, "first", tu.ReadFile(t, filepath.Join(out, "a.html")))
	assert.Equal(t, "second", tu.ReadFile(t, filepath.Join(out, "b.html")))
}

func TestBuild_UncoveredFreeKeysFailFast(t *testing.T) {
	ctx, _ := tu.Context(t)
	input := tu.NewSite(t, map[string]string{"hello.markdown": hello})

	needy := moduleFunc(func(p *pigeon.Pigeon) {
		p.Add(pigeon.Action{Name: "needy", Requires: pigeon.Keys("author"), Provide: "byline",
			Compute: pigeon.Func1(func(_ context.Context, a string) (string, error) { return a, nil })})
	})
	b := NewBuilder(nil, append(append([]pigeon.Module{}, coreModules...), needy)...)

	s := siteConfig(t, input)
	_, err := b.Build(ctx, s)
	require.ErrorIs(t, err, pigeon.ErrMissingAttribute)
	assert.Contains(t, err.Error(), `"author"`)
	assert.NoDirExists(t, s.Output, "nothing may be written when the pipeline is incomplete")
}

func TestBuild_WorkerLimit(t *testing.T) {
	ctx, _ := tu.Context(t)
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		files[name+".md"] = "# " + name + "\n"
	}
	input := tu.NewSite(t, files)

	tracker := &tu.ConcurrencyTracker{Requires: pigeon.Keys("source"), Sleep: 20 * time.Millisecond}
	b := NewBuilder(nil, append(append([]pigeon.Module{}, coreModules...), tracker)...)

	_, err := b.Build(ctx, siteConfig(t, input, func(s *config.Site) { s.Workers = 2 }))
	require.NoError(t, err)
	assert.Equal(t, 6, tracker.Calls())
	assert.LessOrEqual(t, tracker.Max(), 2)
}

func TestBuild_RecordsMetrics(t *testing.T) {
	ctx, _ := tu.Context(t)
	input := tu.NewSite(t, map[string]string{"hello.markdown": hello, "later.markdown": later})
	m := metrics.New()

	_, err := NewBuilder(m).Build(ctx, siteConfig(t, input))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(m.Registry(), "pigeon_engine_actions_total")
	require.NoError(t, err)
	assert.Equal(t, 7, count, "one series per core action")

	count, err = testutil.GatherAndCount(m.Registry(), "pigeon_builds_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCheck_CorePipeline(t *testing.T) {
	b := NewBuilder(nil)
	require.NoError(t, b.Check())
	assert.ElementsMatch(t, []pigeon.Key{article.Source, article.Options}, b.Engine().Free())
}

func TestSortNewestFirst(t *testing.T) {
	d := func(y int) time.Time { return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC) }
	s := []article.Summary{
		{Filename: "u2"}, {Filename: "a", Date: d(2010)}, {Filename: "u1"},
		{Filename: "c", Date: d(2020)}, {Filename: "b", Date: d(2020)},
	}
	sortNewestFirst(s)

	var got []string
	for _, a := range s {
		got = append(got, a.Filename)
	}
	assert.Equal(t, []string{"b", "c", "a", "u1", "u2"}, got)
}

func TestRenderIndex_Escapes(t *testing.T) {
	out, err := RenderIndex([]article.Summary{{Title: "<b>Fish</b> & Chips", Filename: "x.html"}}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;Fish&lt;/b&gt; &amp; Chips")
	assert.Contains(t, out, "<title>pigeon</title>")
}

type moduleFunc func(p *pigeon.Pigeon)

func (f moduleFunc) Register(p *pigeon.Pigeon) { f(p) }
