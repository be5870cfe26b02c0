package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"sort"

	"github.com/vk/pigeon/internal/article"
	"github.com/vk/pigeon/internal/config"
	"github.com/vk/pigeon/modules/writeout"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    {{- with .Stylesheet}}
    <link rel="stylesheet" type="text/css" media="screen" href="{{.}}">
    {{- end}}
    <title>{{.Title}}</title>
  </head>
  <body>
    <h1>Blog Posts</h1>
    <ul class="articles">
    {{- range .Articles}}
      <li>
        {{if .Date.IsZero}}<time class="unknown"></time>{{else}}<time datetime="{{.Date.Format "2006-01-02T15:04:05Z07:00"}}">{{.Date.Format "2 Jan 06"}}</time>{{end}}
        &mdash;
        {{if .Title}}<a class="article" href="{{.Filename}}">{{.Title}}</a>{{else}}<a class="article empty" href="{{.Filename}}"></a>{{end}}
      </li>
    {{- end}}
    </ul>
  </body>
</html>
`))

type indexData struct {
	Title      string
	Stylesheet string
	Articles   []article.Summary
}

// RenderIndex renders the article list page.
func RenderIndex(summaries []article.Summary, opts *article.SiteOptions) (string, error) {
	data := indexData{Title: config.DefaultTitle, Articles: summaries}
	if opts != nil {
		data.Stylesheet = opts.Stylesheet
		if opts.Title != "" {
			data.Title = opts.Title
		}
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render index: %w", err)
	}
	return buf.String(), nil
}

// sortNewestFirst orders dated articles newest first, followed by undated
// ones. Ties keep file name order.
func sortNewestFirst(s []article.Summary) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i], s[j]
		if a.Date.IsZero() != b.Date.IsZero() {
			return !a.Date.IsZero()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Filename < b.Filename
	})
}

func writeIndex(ctx context.Context, summaries []article.Summary, opts *article.SiteOptions) (string, error) {
	out, err := RenderIndex(summaries, opts)
	if err != nil {
		return "", err
	}
	if err := writeout.Write(ctx, out, IndexFile, opts); err != nil {
		return "", fmt.Errorf("failed to write index: %w", err)
	}
	return filepath.Join(opts.OutputDir, IndexFile), nil
}
