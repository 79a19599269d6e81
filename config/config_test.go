package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TFL_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "https://api.tfl.gov.uk", cfg.BaseURL)
	assert.Equal(t, "60s", cfg.Timeout)
	assert.Equal(t, []string{"camden", "liverpool"}, cfg.Localities)
	require.NotNil(t, cfg.Retries)
	assert.Equal(t, 2, *cfg.Retries)
	require.NotNil(t, cfg.MaxTurns)
	assert.Equal(t, 20, *cfg.MaxTurns)
	assert.Zero(t, cfg.RateLimit)
	assert.Empty(t, cfg.TFLAppKey)
	assert.Empty(t, cfg.OpenAIAPIKey)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
model: gpt-4o-mini
timeout: 30s
localities:
  - hackney
rate_limit: 2.5
burst: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "30s", cfg.Timeout)
	assert.Equal(t, []string{"hackney"}, cfg.Localities)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 4, cfg.Burst)
	// Unset fields keep their defaults.
	assert.Equal(t, "https://api.tfl.gov.uk", cfg.BaseURL)
	require.NotNil(t, cfg.Retries)
	assert.Equal(t, 2, *cfg.Retries)
}

func TestLoad_ExplicitZeroRetries(t *testing.T) {
	path := writeConfig(t, `retries: 0`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Retries)
	assert.Equal(t, 0, *cfg.Retries, "an explicit zero disables retries rather than falling back to the default")
}

func TestLoad_NegativeRetries(t *testing.T) {
	path := writeConfig(t, `retries: -1`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries")
}

func TestLoad_ZeroMaxTurns(t *testing.T) {
	path := writeConfig(t, `max_turns: 0`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_turns")
}

func TestLoad_EnvSecrets(t *testing.T) {
	t.Setenv("TFL_API_KEY", "tfl-secret")
	t.Setenv("OPENAI_API_KEY", "openai-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tfl-secret", cfg.TFLAppKey)
	assert.Equal(t, "openai-secret", cfg.OpenAIAPIKey)
}

func TestLoad_SecretsNotReadFromFile(t *testing.T) {
	t.Setenv("TFL_API_KEY", "")
	path := writeConfig(t, `
tflappkey: leaked
model: gpt-4o
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.TFLAppKey, "API keys come from the environment only")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	path := writeConfig(t, `timeout: soon`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "model: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestTimeoutDuration(t *testing.T) {
	cfg := &Config{Timeout: "90s"}
	d, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}
