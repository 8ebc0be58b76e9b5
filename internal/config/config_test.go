package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/fdi-ranker/internal/config"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
	assert.Equal(t, config.ProviderOpenAI, cfg.Provider)
	assert.InDelta(t, 0.4, cfg.Temperature, 1e-6)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: gemini
model: gemini-2.5-pro
request_timeout: 45s
rate_limit_rps: 2
input: companies.csv
`), 0o644))

	cfg, err := config.Load(path, envMap(map[string]string{
		"RANKER_MODEL":   "gemini-override",
		"RATE_LIMIT_RPS": "0.5",
	}))
	require.NoError(t, err)

	assert.Equal(t, config.ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-override", cfg.Model)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.InDelta(t, 0.5, cfg.RateLimitRPS, 1e-9)
	assert.Equal(t, "companies.csv", cfg.Input)
	assert.Equal(t, "output.csv", cfg.Output)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := config.Load(filepath.Join(dir, "missing.yaml"), envMap(nil))
	require.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("nope: 1\n"), 0o644))
	_, err = config.Load(unknown, envMap(nil))
	require.Error(t, err)

	_, err = config.Load("", envMap(map[string]string{"REQUEST_TIMEOUT": "soon"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_TIMEOUT")
}

func TestFinalize(t *testing.T) {
	t.Run("missing credential", func(t *testing.T) {
		cfg := config.Defaults()
		err := cfg.Finalize(envMap(nil))
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrMissingCredential))
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("resolves provider key", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Provider = " Gemini "
		require.NoError(t, cfg.Finalize(envMap(map[string]string{"GEMINI_API_KEY": " g-key "})))
		assert.Equal(t, config.ProviderGemini, cfg.Provider)
		assert.Equal(t, "g-key", cfg.APIKey)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Provider = "llama"
		err := cfg.Finalize(envMap(map[string]string{"OPENAI_API_KEY": "k"}))
		require.Error(t, err)
		assert.False(t, errors.Is(err, config.ErrMissingCredential))
	})

	t.Run("rejects out of range temperature", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Temperature = 3
		require.Error(t, cfg.Finalize(envMap(map[string]string{"OPENAI_API_KEY": "k"})))
	})

	t.Run("rejects bad base url", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.BaseURL = "not a url"
		require.Error(t, cfg.Finalize(envMap(map[string]string{"OPENAI_API_KEY": "k"})))
	})
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	require.NoError(t, config.WriteEnvTemplate(path, config.ProviderOpenAI, "", false))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `OPENAI_API_KEY="YOUR_API_KEY_HERE"`)

	require.Error(t, config.WriteEnvTemplate(path, config.ProviderOpenAI, "x", false))
	require.NoError(t, config.WriteEnvTemplate(path, config.ProviderOpenAI, "sk-from-test", true))

	t.Setenv("OPENAI_API_KEY", "")
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))
	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "absent.env"), path))
	assert.Equal(t, "sk-from-test", os.Getenv("OPENAI_API_KEY"))
}

func TestDump_OmitsCredential(t *testing.T) {
	cfg := config.Defaults()
	cfg.APIKey = "sk-should-not-appear"
	out, err := cfg.Dump()
	require.NoError(t, err)
	assert.Contains(t, out, "provider: openai")
	assert.NotContains(t, out, "sk-should-not-appear")
}
