package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/pigeon/internal/config"
	"github.com/vk/pigeon/internal/ctxlog"
	"github.com/vk/pigeon/internal/fsutil"
	"github.com/vk/pigeon/internal/hcl"
	"github.com/vk/pigeon/internal/yamlconfig"
)

// siteFiles are looked up, in order, in the input directory.
var siteFiles = []string{"site.hcl", "site.yaml", "site.yml"}

// loaderFor picks the configuration loader by file extension.
func loaderFor(path string) (config.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hcl.NewLoader(), nil
	case ".yaml", ".yml":
		return yamlconfig.NewLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported config file %s: expected .hcl, .yaml or .yml", path)
	}
}

// discoverConfig returns the explicit config path or the first site file
// found in the input directory, "" when there is none.
func discoverConfig(cfg *Config) string {
	if cfg.ConfigPath != "" {
		return cfg.ConfigPath
	}
	input := cfg.Overrides.Input
	if input == "" {
		input = "."
	}
	return fsutil.FindFirst(input, siteFiles...)
}

// loadSite merges defaults, the site file and the command line overrides
// into a normalized site. Relative input and output paths of a site file
// are resolved against the file's directory.
func loadSite(ctx context.Context, cfg *Config) (*config.Site, string, error) {
	logger := ctxlog.FromContext(ctx)

	var fromFile *config.Site
	path := discoverConfig(cfg)
	if path != "" {
		loader, err := loaderFor(path)
		if err != nil {
			return nil, "", err
		}
		model, err := loader.Load(ctx, path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load configuration: %w", err)
		}
		fromFile = model.Site
		dir := filepath.Dir(path)
		if fromFile.Input != "" && !filepath.IsAbs(fromFile.Input) {
			fromFile.Input = filepath.Join(dir, fromFile.Input)
		}
		if fromFile.Output != "" && !filepath.IsAbs(fromFile.Output) {
			fromFile.Output = filepath.Join(dir, fromFile.Output)
		}
		if fromFile.Input == "" {
			fromFile.Input = dir
		}
		logger.Debug("Site file loaded.", "path", path)
	} else {
		logger.Debug("No site file found, using defaults and flags.")
	}

	site, err := config.Normalize(config.Merge(fromFile, &cfg.Overrides))
	if err != nil {
		return nil, "", err
	}
	return site, path, nil
}
