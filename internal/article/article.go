// Package article names the attributes a site build threads through the
// engine and the values shared between the page-building modules.
package article

import (
	"time"

	"github.com/vk/pigeon/internal/pigeon"
)

// Attribute keys of one article build.
const (
	Source   pigeon.Key = "source"   // path of the markdown file
	HTML     pigeon.Key = "html"     // rendered article body
	Document pigeon.Key = "document" // parsed *html.Node of HTML
	Title    pigeon.Key = "title"    // text of the first <h1>, may be empty
	Date     pigeon.Key = "date"     // publication time, zero when unknown
	Output   pigeon.Key = "output"   // complete page
	Filename pigeon.Key = "filename" // page file name inside the output directory
	Options  pigeon.Key = "options"  // *SiteOptions of the site
)

// PageSink receives finished pages in place of the output directory.
type PageSink interface {
	Put(filename, output string) error
}

// SiteOptions are the site-wide settings every article build can read.
type SiteOptions struct {
	// Title is the site title used in page heads.
	Title string
	// Stylesheet is an optional stylesheet URL linked from every page.
	Stylesheet string
	// OutputDir is where pages are written.
	OutputDir string
	// Params holds free-form values from the site configuration.
	Params map[string]any
	// Sink, when set, collects pages instead of writing them to OutputDir.
	Sink PageSink
}

// Summary is what the index page needs to know about a built article.
type Summary struct {
	Source   string
	Title    string
	Date     time.Time
	Filename string
}

// Summarize extracts the index entry from the attributes of a finished build.
func Summarize(attrs pigeon.Attributes) Summary {
	s := Summary{}
	s.Source, _ = attrs[Source].(string)
	s.Title, _ = attrs[Title].(string)
	s.Date, _ = attrs[Date].(time.Time)
	s.Filename, _ = attrs[Filename].(string)
	return s
}
