package hcl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/vk/pigeon/internal/config"
	"github.com/vk/pigeon/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// environ supplies the `env` variable; os.Environ when nil.
	environ func() []string
}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

// fileRoot is used to decode the top level of a site file.
type fileRoot struct {
	Site   *siteBlock `hcl:"site,block"`
	Remain hcl.Body   `hcl:",remain"`
}

type siteBlock struct {
	Title      string       `hcl:"title,optional"`
	Stylesheet string       `hcl:"stylesheet,optional"`
	Input      string       `hcl:"input,optional"`
	Output     string       `hcl:"output,optional"`
	Include    []string     `hcl:"include,optional"`
	Recursive  bool         `hcl:"recursive,optional"`
	Workers    int          `hcl:"workers,optional"`
	Params     cty.Value    `hcl:"params,optional"`
	Notify     *notifyBlock `hcl:"notify,block"`
}

type notifyBlock struct {
	URL       string `hcl:"url"`
	Namespace string `hcl:"namespace,optional"`
	Event     string `hcl:"event,optional"`
}

// Load parses and decodes the site file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, l.evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	if root.Site == nil {
		return nil, fmt.Errorf("HCL file %s has no site block", path)
	}

	site, err := translateSite(root.Site)
	if err != nil {
		return nil, fmt.Errorf("HCL file %s: %w", path, err)
	}

	logger.Debug("HCL loading complete.", "path", path, "params", len(site.Params))
	return &config.Model{Site: site, Path: path}, nil
}

// evalContext exposes the environment and string helpers to expressions.
func (l *Loader) evalContext() *hcl.EvalContext {
	environ := l.environ
	if environ == nil {
		environ = os.Environ
	}
	env := make(map[string]cty.Value)
	for _, e := range environ() {
		if k, v, ok := strings.Cut(e, "="); ok && k != "" {
			env[k] = cty.StringVal(v)
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
		Functions: map[string]function.Function{
			"upper":     stdlib.UpperFunc,
			"lower":     stdlib.LowerFunc,
			"format":    stdlib.FormatFunc,
			"join":      stdlib.JoinFunc,
			"trimspace": stdlib.TrimSpaceFunc,
		},
	}
}

func translateSite(b *siteBlock) (*config.Site, error) {
	site := &config.Site{
		Title:      b.Title,
		Stylesheet: b.Stylesheet,
		Input:      b.Input,
		Output:     b.Output,
		Include:    b.Include,
		Recursive:  b.Recursive,
		Workers:    b.Workers,
	}

	if !b.Params.IsNull() && b.Params.IsKnown() {
		if !b.Params.Type().IsObjectType() && !b.Params.Type().IsMapType() {
			return nil, fmt.Errorf("params must be an object, got %s", b.Params.Type().FriendlyName())
		}
		params, err := ctyValueToInterface(b.Params)
		if err != nil {
			return nil, fmt.Errorf("params: %w", err)
		}
		site.Params = params.(map[string]any)
	}

	if b.Notify != nil {
		site.Notify = &config.Notify{
			URL:       b.Notify.URL,
			Namespace: b.Notify.Namespace,
			Event:     b.Notify.Event,
		}
	}
	return site, nil
}
