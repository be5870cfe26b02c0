package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/vk/pigeon/internal/config"
)

// DefaultDebounce is how long watch mode waits for more changes before
// rebuilding.
const DefaultDebounce = 200 * time.Millisecond

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPath is an explicit site file. When empty, site.hcl, site.yaml
	// or site.yml is looked up in the input directory.
	ConfigPath string
	// Overrides are the site settings given on the command line. They win
	// over the site file, which wins over the defaults.
	Overrides config.Site

	LogFormat string
	LogLevel  string
	Debounce  time.Duration
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat))
	}
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel))
	}
	if cfg.Overrides.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
