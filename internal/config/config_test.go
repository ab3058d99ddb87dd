package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "fr-en", cfg.DefaultPair)
	assert.Equal(t, "ollama", cfg.Provider.Type)
	assert.Equal(t, 60*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "127.0.0.1:8787", cfg.HTTP.Listen)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, filepath.Join(cfg.DataDir, "translationmdexe.db"), cfg.DatabasePath())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_pair: en-de
provider:
  type: openrouter
  model: some/model
  api_key: key
pairs:
  fr-en:
    model: llama3.1:70b
license:
  activation_codes: ["AAA", "BBB"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "en-de", cfg.DefaultPair)
	assert.Equal(t, "openrouter", cfg.Provider.Type)
	assert.Equal(t, []string{"AAA", "BBB"}, cfg.License.ActivationCodes)
	assert.Equal(t, "llama3.1:70b", cfg.ModelFor("fr-en"))
	assert.Equal(t, "some/model", cfg.ModelFor("en-de"))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TRANSLATIONMDEXE_PROVIDER_TYPE", "openai")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider.Type)
}

func TestLoadEnvOnlyKeys(t *testing.T) {
	// keys with no default still come through from the environment
	t.Setenv("TRANSLATIONMDEXE_PROVIDER_API_KEY", "sekret")
	t.Setenv("TRANSLATIONMDEXE_PROVIDER_BASE_URL", "http://localhost:11434")
	t.Setenv("TRANSLATIONMDEXE_LICENSE_BOOTSTRAP_PASSWORD", "hunter2")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sekret", cfg.Provider.APIKey)
	assert.Equal(t, "http://localhost:11434", cfg.Provider.BaseURL)
	assert.Equal(t, "hunter2", cfg.License.BootstrapPassword)
}

func TestLoadBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
