// Package config provides configuration management for the draftgen CLI.
// It supports loading configuration from a YAML file with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/draftgen-cli/pkg/generation"
	"github.com/otherjamesbrown/draftgen-cli/pkg/logging"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultConfigDir    = ".draftgen"
	DefaultConfigFile   = "config.yaml"
	DefaultOutputFormat = OutputFormatText
)

// Config holds the CLI configuration settings.
type Config struct {
	// Generation holds the generation service settings. The API key is
	// never stored here; see the credentials package.
	Generation generation.Config `yaml:"generation"`

	// ModelArtifactPath points at an externally provisioned intent model
	// artifact. Empty means the built-in model is used.
	ModelArtifactPath string `yaml:"model_artifact_path,omitempty"`

	// RequestTimeout bounds one full pipeline run.
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// RedisAddress enables the Redis audit event sink when set (host:port).
	RedisAddress string `yaml:"redis_address,omitempty"`

	// LogLevel sets the minimum log level (debug, info, warn, error).
	LogLevel logging.Level `yaml:"log_level,omitempty"`

	// LogJSON forces JSON log output regardless of terminal detection.
	LogJSON bool `yaml:"log_json,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Generation:   generation.DefaultConfig(),
		OutputFormat: DefaultOutputFormat,
		LogLevel:     logging.LevelInfo,
	}
}

// ConfigDir returns the configuration directory.
// Uses $DRAFTGEN_CONFIG_DIR if set, otherwise ~/.draftgen.
func ConfigDir() (string, error) {
	if dir := os.Getenv("DRAFTGEN_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path of the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads configuration with the following precedence, lowest
// first: defaults, config file, environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// loadFromFile merges settings from a YAML file into cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// loadFromEnv overlays DRAFTGEN_* environment variables onto cfg.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("DRAFTGEN_BASE_URL"); v != "" {
		cfg.Generation.BaseURL = v
	}
	if v := os.Getenv("DRAFTGEN_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
	if v := os.Getenv("DRAFTGEN_TRANSCRIPTION_MODEL"); v != "" {
		cfg.Generation.TranscriptionModel = v
	}
	if v := os.Getenv("DRAFTGEN_ATTEMPT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Generation.AttemptTimeout = d
		}
	}
	if v := os.Getenv("DRAFTGEN_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Generation.Retry.MaxRetries = n
		}
	}
	if v := os.Getenv("DRAFTGEN_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("DRAFTGEN_MODEL_ARTIFACT"); v != "" {
		cfg.ModelArtifactPath = v
	}
	if v := os.Getenv("DRAFTGEN_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(strings.ToLower(v))
	}
	if v := os.Getenv("DRAFTGEN_REDIS_ADDRESS"); v != "" {
		cfg.RedisAddress = v
	}
	if v := os.Getenv("DRAFTGEN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = logging.Level(strings.ToLower(v))
	}
	if v := os.Getenv("DRAFTGEN_LOG_JSON"); v == "true" || v == "1" {
		cfg.LogJSON = true
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
	default:
		return fmt.Errorf("invalid output format %q (want text, json, or yaml)", c.OutputFormat)
	}
	if c.Generation.AttemptTimeout <= 0 {
		return fmt.Errorf("generation attempt_timeout must be positive")
	}
	if c.Generation.Retry.MaxRetries < 0 {
		return fmt.Errorf("generation max_retries must not be negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// Save writes the configuration to the config file, creating the
// directory if needed.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dir, DefaultConfigFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
