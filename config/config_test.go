package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/draftgen-cli/pkg/logging"
)

// useTempConfigDir points all config paths at a fresh directory and clears
// the override environment variables that would leak between tests.
func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DRAFTGEN_CONFIG_DIR", dir)
	for _, key := range []string{
		"DRAFTGEN_BASE_URL", "DRAFTGEN_MODEL", "DRAFTGEN_TRANSCRIPTION_MODEL",
		"DRAFTGEN_ATTEMPT_TIMEOUT",
		"DRAFTGEN_MAX_RETRIES", "DRAFTGEN_REQUEST_TIMEOUT", "DRAFTGEN_MODEL_ARTIFACT",
		"DRAFTGEN_OUTPUT_FORMAT", "DRAFTGEN_REDIS_ADDRESS", "DRAFTGEN_LOG_LEVEL",
		"DRAFTGEN_LOG_JSON",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, OutputFormatText, cfg.OutputFormat)
	assert.Equal(t, logging.LevelInfo, cfg.LogLevel)
	assert.NotEmpty(t, cfg.Generation.Model)
	assert.Greater(t, cfg.Generation.AttemptTimeout, time.Duration(0))
	assert.NoError(t, cfg.Validate())
}

func TestConfigDirOverride(t *testing.T) {
	dir := useTempConfigDir(t)

	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultConfigFile), path)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	useTempConfigDir(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, OutputFormatText, cfg.OutputFormat)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := useTempConfigDir(t)

	raw := `generation:
  model: test-model
  attempt_timeout: 3s
output_format: json
redis_address: localhost:6379
log_level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(raw), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-model", cfg.Generation.Model)
	assert.Equal(t, 3*time.Second, cfg.Generation.AttemptTimeout)
	assert.Equal(t, OutputFormatJSON, cfg.OutputFormat)
	assert.Equal(t, "localhost:6379", cfg.RedisAddress)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := useTempConfigDir(t)

	raw := `generation:
  model: file-model
output_format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(raw), 0o600))

	t.Setenv("DRAFTGEN_MODEL", "env-model")
	t.Setenv("DRAFTGEN_TRANSCRIPTION_MODEL", "env-whisper")
	t.Setenv("DRAFTGEN_OUTPUT_FORMAT", "YAML")
	t.Setenv("DRAFTGEN_MAX_RETRIES", "5")
	t.Setenv("DRAFTGEN_REQUEST_TIMEOUT", "90s")
	t.Setenv("DRAFTGEN_LOG_JSON", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.Generation.Model)
	assert.Equal(t, "env-whisper", cfg.Generation.TranscriptionModel)
	assert.Equal(t, OutputFormatYAML, cfg.OutputFormat)
	assert.Equal(t, 5, cfg.Generation.Retry.MaxRetries)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.LogJSON)
}

func TestLoadConfigIgnoresBadEnvValues(t *testing.T) {
	useTempConfigDir(t)
	t.Setenv("DRAFTGEN_ATTEMPT_TIMEOUT", "not-a-duration")
	t.Setenv("DRAFTGEN_MAX_RETRIES", "-2")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Generation.AttemptTimeout, cfg.Generation.AttemptTimeout)
	assert.Equal(t, DefaultConfig().Generation.Retry.MaxRetries, cfg.Generation.Retry.MaxRetries)
}

func TestLoadConfigRejectsBadFile(t *testing.T) {
	dir := useTempConfigDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("{not yaml"), 0o600))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad output format",
			mutate:  func(c *Config) { c.OutputFormat = "xml" },
			wantErr: "invalid output format",
		},
		{
			name:    "zero attempt timeout",
			mutate:  func(c *Config) { c.Generation.AttemptTimeout = 0 },
			wantErr: "attempt_timeout",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Generation.Retry.MaxRetries = -1 },
			wantErr: "max_retries",
		},
		{
			name:    "negative request timeout",
			mutate:  func(c *Config) { c.RequestTimeout = -time.Second },
			wantErr: "request_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := useTempConfigDir(t)

	cfg := DefaultConfig()
	cfg.Generation.Model = "saved-model"
	cfg.OutputFormat = OutputFormatJSON
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, DefaultConfigFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "saved-model", loaded.Generation.Model)
	assert.Equal(t, OutputFormatJSON, loaded.OutputFormat)
}
