// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FindFiles searches rootPath for regular files matching any of the glob
// patterns and returns their full paths in lexical order. A pattern without a
// slash is matched against the file name, otherwise against the slash
// separated path relative to rootPath. Subdirectories are only visited when
// recursive is set; hidden directories are always skipped.
func FindFiles(rootPath string, patterns []string, recursive bool) ([]string, error) {
	if len(patterns) == 0 {
		panic("patterns must not be empty")
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootPath)
	}

	var files []string
	err = filepath.WalkDir(rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == rootPath {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(rootPath, p)
		if err != nil {
			return err
		}
		ok, err := Match(patterns, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if ok {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Match reports whether the slash separated relative path matches any of
// the patterns, using the rules of FindFiles.
func Match(patterns []string, rel string) (bool, error) {
	for _, pattern := range patterns {
		subject := rel
		if !strings.Contains(pattern, "/") {
			subject = path.Base(rel)
		}
		ok, err := path.Match(pattern, subject)
		if err != nil {
			return false, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// FindFirst returns the first of names that exists as a regular file in dir,
// or "" when none does.
func FindFirst(dir string, names ...string) string {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}
