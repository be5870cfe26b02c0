package page

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/vk/pigeon/internal/article"
	"github.com/vk/pigeon/internal/pigeon"
)

// Module implements the pigeon.Module interface for this package. It
// contributes the template and filename actions.
type Module struct{}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    {{- range .Meta}}
    <meta name="{{.Name}}" content="{{.Content}}">
    {{- end}}
    {{- with .Options.Stylesheet}}
    <link rel="stylesheet" type="text/css" media="screen" href="{{.}}">
    {{- end}}
    <title>{{.PageTitle}}</title>
  </head>
  <body>
    <article>
{{.Body}}
    </article>
  </body>
</html>
`))

type pageData struct {
	Title     string
	Date      time.Time
	Body      template.HTML
	Options   *article.SiteOptions
	PageTitle string
	Meta      []metaTag
}

type metaTag struct {
	Name    string
	Content string
}

// metaParams are the site params rendered as <meta> tags when they are
// strings.
var metaParams = []string{"author", "description", "generator"}

func metaTags(params map[string]any) []metaTag {
	var tags []metaTag
	for _, name := range metaParams {
		if v, ok := params[name].(string); ok && v != "" {
			tags = append(tags, metaTag{Name: name, Content: v})
		}
	}
	return tags
}

// Render wraps the article body into a complete HTML page. The page title
// is the site title, or the article title when the site has none.
func Render(ctx context.Context, title string, date time.Time, body string, opts *article.SiteOptions) (string, error) {
	if opts == nil {
		opts = &article.SiteOptions{}
	}
	data := pageData{
		Title:     title,
		Date:      date,
		Body:      template.HTML(body),
		Options:   opts,
		PageTitle: opts.Title,
		Meta:      metaTags(opts.Params),
	}
	if data.PageTitle == "" {
		data.PageTitle = title
	}

	var sb strings.Builder
	if err := pageTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return sb.String(), nil
}

// Filename derives the page file name, "<YYYY-MM-DD>-<slug>.html". Undated
// articles use "undated" as prefix and untitled ones are named after their
// source file.
func Filename(ctx context.Context, title string, date time.Time, source string) (string, error) {
	prefix := "undated"
	if !date.IsZero() {
		prefix = date.Format("2006-01-02")
	}

	slug := Slug(title)
	if slug == "" {
		base := filepath.Base(source)
		slug = Slug(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	if slug == "" {
		return "", fmt.Errorf("cannot derive a file name for %q", source)
	}
	return prefix + "-" + slug + ".html", nil
}

// Slug lowercases s and joins its letter and digit runs with dashes.
func Slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return sb.String()
}

// Register registers the actions with the engine.
func (m *Module) Register(p *pigeon.Pigeon) {
	p.Add(pigeon.Action{
		Name:     "template",
		Requires: []pigeon.Key{article.Title, article.Date, article.HTML, article.Options},
		Provide:  article.Output,
		Compute:  pigeon.Func4(Render),
	})
	p.Add(pigeon.Action{
		Name:     "filename",
		Requires: []pigeon.Key{article.Title, article.Date, article.Source},
		Provide:  article.Filename,
		Compute:  pigeon.Func3(Filename),
	})
}
