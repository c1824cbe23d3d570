// Package cmd provides CLI commands for the draftgen tool.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/draftgen-cli/config"
)

// renderJSON writes v as indented JSON.
func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderYAML writes v as YAML.
func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}

// resolveOutputFormat picks the effective format: the command flag wins,
// then the configured default, then text.
func resolveOutputFormat(flagValue string, cfg *config.Config) (config.OutputFormat, error) {
	format := config.OutputFormatText
	if cfg != nil && cfg.OutputFormat != "" {
		format = cfg.OutputFormat
	}
	if flagValue != "" {
		format = config.OutputFormat(flagValue)
	}

	switch format {
	case config.OutputFormatText, config.OutputFormatJSON, config.OutputFormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, or yaml)", format)
	}
}
