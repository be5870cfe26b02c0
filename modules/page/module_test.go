package page

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pigeon/internal/article"
)

func TestRender(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC)

	t.Run("site options", func(t *testing.T) {
		out, err := Render(ctx, "Post", date, "<h1>Post</h1>", &article.SiteOptions{Title: "blog", Stylesheet: "/style.css"})
		require.NoError(t, err)
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, `<meta charset="utf-8">`)
		assert.Contains(t, out, `<link rel="stylesheet" type="text/css" media="screen" href="/style.css">`)
		assert.Contains(t, out, "<title>blog</title>")
		assert.Contains(t, out, "<article>\n<h1>Post</h1>\n    </article>")
	})

	t.Run("string params become meta tags", func(t *testing.T) {
		opts := &article.SiteOptions{Params: map[string]any{"author": "Ada <ada@example.com>", "description": 42, "other": "x"}}
		out, err := Render(ctx, "Post", date, "", opts)
		require.NoError(t, err)
		assert.Contains(t, out, `<meta name="author" content="Ada &lt;ada@example.com&gt;">`)
		assert.NotContains(t, out, `name="description"`)
		assert.NotContains(t, out, `name="other"`)
	})

	t.Run("no stylesheet and no site title", func(t *testing.T) {
		out, err := Render(ctx, "Fish & Chips", time.Time{}, "<p>x</p>", nil)
		require.NoError(t, err)
		assert.NotContains(t, out, "stylesheet")
		assert.Contains(t, out, "<title>Fish &amp; Chips</title>")
	})
}

func TestFilename(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		title  string
		date   time.Time
		source string
		want   string
	}{
		{name: "dated and titled", title: "Hello, World!", date: date, source: "a.markdown", want: "2012-03-04-hello-world.html"},
		{name: "undated", title: "Hello", source: "a.markdown", want: "undated-hello.html"},
		{name: "untitled uses source", date: date, source: "posts/My Post.markdown", want: "2012-03-04-my-post.html"},
		{name: "unicode title", title: "Über Café", date: date, source: "x.md", want: "2012-03-04-über-café.html"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Filename(ctx, tc.title, tc.date, tc.source)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := Filename(ctx, "!!!", date, "???.md")
	assert.ErrorContains(t, err, "cannot derive a file name")
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "a-b-c", Slug("  A  b--C "))
	assert.Equal(t, "2012-in-review", Slug("2012 in Review"))
	assert.Equal(t, "", Slug("---"))
}
