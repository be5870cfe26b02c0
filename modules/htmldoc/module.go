package htmldoc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vk/pigeon/internal/article"
	"github.com/vk/pigeon/internal/ctxlog"
	"github.com/vk/pigeon/internal/pigeon"
)

// Module implements the pigeon.Module interface for this package. It
// contributes the parse, title and date actions.
type Module struct{}

// Parse parses rendered article HTML into a document tree.
func Parse(ctx context.Context, body string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Title returns the text of the first <h1>, or "" when there is none.
func Title(ctx context.Context, doc *html.Node) (string, error) {
	h1 := find(doc, func(n *html.Node) bool { return n.DataAtom == atom.H1 })
	if h1 == nil {
		ctxlog.FromContext(ctx).Debug("Document has no <h1>, title left empty.")
		return "", nil
	}
	return strings.TrimSpace(text(h1)), nil
}

// Date returns the publication time declared by the first <time pubdate>
// element. A missing element or an unparsable datetime yields the zero time.
func Date(ctx context.Context, doc *html.Node) (time.Time, error) {
	logger := ctxlog.FromContext(ctx)

	el := find(doc, func(n *html.Node) bool {
		_, ok := attr(n, "pubdate")
		return n.DataAtom == atom.Time && ok
	})
	if el == nil {
		logger.Debug("Document has no <time pubdate>, date left empty.")
		return time.Time{}, nil
	}

	raw, ok := attr(el, "datetime")
	if !ok {
		raw = text(el)
	}
	date, err := ParseDate(raw)
	if err != nil {
		logger.Warn("Ignoring unparsable publication date.", "datetime", raw, "error", err)
		return time.Time{}, nil
	}
	return date, nil
}

// Register registers the actions with the engine.
func (m *Module) Register(p *pigeon.Pigeon) {
	p.Add(pigeon.Action{
		Name:     "parse_html",
		Requires: []pigeon.Key{article.HTML},
		Provide:  article.Document,
		Compute:  pigeon.Func1(Parse),
	})
	p.Add(pigeon.Action{
		Name:     "title",
		Requires: []pigeon.Key{article.Document},
		Provide:  article.Title,
		Compute:  pigeon.Func1(Title),
	})
	p.Add(pigeon.Action{
		Name:     "date",
		Requires: []pigeon.Key{article.Document},
		Provide:  article.Date,
		Compute:  pigeon.Func1(Date),
	})
}

// find returns the first node in document order matching match.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// text concatenates all text below n.
func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
