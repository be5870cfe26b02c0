// Package yamlconfig loads site configuration written in YAML. It accepts the
// same fields as the HCL site block, without expression evaluation.
package yamlconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/pigeon/internal/config"
	"github.com/vk/pigeon/internal/ctxlog"
)

// Loader implements config.Loader for YAML files.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

type fileRoot struct {
	Site *siteDoc `yaml:"site"`
}

type siteDoc struct {
	Title      string         `yaml:"title"`
	Stylesheet string         `yaml:"stylesheet"`
	Input      string         `yaml:"input"`
	Output     string         `yaml:"output"`
	Include    []string       `yaml:"include"`
	Recursive  bool           `yaml:"recursive"`
	Workers    int            `yaml:"workers"`
	Params     map[string]any `yaml:"params"`
	Notify     *notifyDoc     `yaml:"notify"`
}

type notifyDoc struct {
	URL       string `yaml:"url"`
	Namespace string `yaml:"namespace"`
	Event     string `yaml:"event"`
}

// Load reads and decodes the YAML site file at path. Unknown fields are
// rejected so typos do not silently fall back to defaults.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}

	var root fileRoot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	if root.Site == nil {
		return nil, fmt.Errorf("YAML file %s has no site section", path)
	}

	d := root.Site
	site := &config.Site{
		Title:      d.Title,
		Stylesheet: d.Stylesheet,
		Input:      d.Input,
		Output:     d.Output,
		Include:    d.Include,
		Recursive:  d.Recursive,
		Workers:    d.Workers,
		Params:     d.Params,
	}
	if d.Notify != nil {
		site.Notify = &config.Notify{
			URL:       d.Notify.URL,
			Namespace: d.Notify.Namespace,
			Event:     d.Notify.Event,
		}
	}

	logger.Debug("YAML loading complete.", "path", path)
	return &config.Model{Site: site, Path: path}, nil
}
