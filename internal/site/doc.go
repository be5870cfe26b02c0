// Package site builds a static site: every source file matching the include
// patterns is run through one engine execution, and an index page listing
// the results is written next to the generated pages.
package site
