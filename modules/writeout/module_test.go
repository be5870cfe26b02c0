package writeout

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pigeon/internal/article"
	"github.com/vk/pigeon/internal/pigeon"
)

func TestWrite(t *testing.T) {
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "public", "nested")

	require.NoError(t, Write(ctx, "<html>", "page.html", &article.SiteOptions{OutputDir: out}))
	data, err := os.ReadFile(filepath.Join(out, "page.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
}

func TestWrite_Rejects(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	assert.ErrorContains(t, Write(ctx, "x", "page.html", nil), "no output directory")
	assert.ErrorContains(t, Write(ctx, "x", "../escape.html", &article.SiteOptions{OutputDir: dir}), "invalid page file name")
	assert.ErrorContains(t, Write(ctx, "x", "", &article.SiteOptions{OutputDir: dir}), "invalid page file name")
}

type memSink map[string]string

func (m memSink) Put(filename, output string) error {
	m[filename] = output
	return nil
}

func TestWrite_Sink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	sink := memSink{}

	require.NoError(t, Write(context.Background(), "<html>", "page.html", &article.SiteOptions{OutputDir: dir, Sink: sink}))
	assert.Equal(t, memSink{"page.html": "<html>"}, sink)
	assert.NoDirExists(t, dir)

	err := Write(context.Background(), "x", "../escape.html", &article.SiteOptions{OutputDir: dir, Sink: sink})
	assert.ErrorContains(t, err, "invalid page file name")
	assert.Len(t, sink, 1)
}

func TestModule_ProvidesNothing(t *testing.T) {
	dir := t.TempDir()
	p := pigeon.New().Use(&Module{})

	attrs, err := p.Execute(context.Background(), pigeon.Attributes{
		article.Output:   "body",
		article.Filename: "a.html",
		article.Options:  &article.SiteOptions{OutputDir: dir},
	})
	require.NoError(t, err)
	assert.Len(t, attrs, 3)
	assert.FileExists(t, filepath.Join(dir, "a.html"))
}
