package config

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"slices"
)

// Merge overlays the non-zero fields of override onto base and returns the
// result. Neither argument is modified; Params maps are merged key by key.
func Merge(base, override *Site) *Site {
	out := &Site{}
	if base != nil {
		*out = *base
		out.Include = slices.Clone(base.Include)
		out.Params = cloneParams(base.Params)
		if base.Notify != nil {
			n := *base.Notify
			out.Notify = &n
		}
	}
	if override == nil {
		return out
	}

	if override.Title != "" {
		out.Title = override.Title
	}
	if override.Stylesheet != "" {
		out.Stylesheet = override.Stylesheet
	}
	if override.Input != "" {
		out.Input = override.Input
	}
	if override.Output != "" {
		out.Output = override.Output
	}
	if len(override.Include) > 0 {
		out.Include = slices.Clone(override.Include)
	}
	if override.Recursive {
		out.Recursive = true
	}
	if override.Workers > 0 {
		out.Workers = override.Workers
	}
	for k, v := range override.Params {
		if out.Params == nil {
			out.Params = make(map[string]any)
		}
		out.Params[k] = v
	}
	if override.Notify != nil {
		n := *override.Notify
		out.Notify = &n
	}
	return out
}

// Normalize fills in defaults and validates the site. The output directory
// defaults to the input directory, as the original command line did.
func Normalize(s *Site) (*Site, error) {
	out := Merge(s, nil)

	if out.Title == "" {
		out.Title = DefaultTitle
	}
	if out.Input == "" {
		out.Input = "."
	}
	if out.Output == "" {
		out.Output = out.Input
	}
	if len(out.Include) == 0 {
		out.Include = slices.Clone(DefaultInclude)
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.Notify != nil && out.Notify.Event == "" {
		out.Notify.Event = DefaultNotifyEvent
	}

	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate reports every problem of a normalized site at once.
func Validate(s *Site) error {
	var errs []error
	for _, pattern := range s.Include {
		if _, err := path.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("include pattern %q: %w", pattern, err))
		}
	}
	if s.Notify != nil {
		u, err := url.Parse(s.Notify.URL)
		switch {
		case s.Notify.URL == "":
			errs = append(errs, errors.New("notify: url is required"))
		case err != nil:
			errs = append(errs, fmt.Errorf("notify: %w", err))
		case u.Scheme == "" || u.Host == "":
			errs = append(errs, fmt.Errorf("notify: url %q must be absolute", s.Notify.URL))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid site configuration: %w", errors.Join(errs...))
	}
	return nil
}

func cloneParams(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
