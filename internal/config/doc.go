// Package config defines the format-agnostic site configuration and the
// Loader contract implemented by the file-format packages (internal/hcl,
// internal/yamlconfig). Loaders only translate; defaults and validation
// live here so every format behaves the same.
package config
