// Package config resolves run settings from defaults, an optional YAML file,
// the environment (including a .env file) and CLI flags, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ErrMissingCredential means the selected provider has no API key configured.
var ErrMissingCredential = errors.New("missing API credential")

// Config is the full set of run settings.
type Config struct {
	Provider     string  `yaml:"provider" validate:"oneof=openai gemini"`
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	SystemPrompt string  `yaml:"system_prompt"`
	PromptFile   string  `yaml:"prompt_file"`
	BaseURL      string  `yaml:"base_url" validate:"omitempty,url"`

	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" validate:"gte=0"`

	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`

	// APIKey is never read from the YAML file.
	APIKey string `yaml:"-"`
}

// Defaults target OpenAI gpt-4 at temperature 0.4.
func Defaults() Config {
	return Config{
		Provider:       ProviderOpenAI,
		Temperature:    0.4,
		SystemPrompt:   "You are a helpful AI FDI analyst.",
		RequestTimeout: 60 * time.Second,
		Input:          "input.csv",
		Output:         "output.csv",
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// Load builds a Config from defaults, the YAML file at path (if non-empty)
// and the environment. Flags are applied by the caller before Finalize.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		if err := decodeYAML(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Finalize validates cfg and resolves the provider credential from getenv.
// It must succeed before any record is processed.
func (c *Config) Finalize(getenv func(string) string) error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if strings.TrimSpace(c.Input) == "" || strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("invalid config: input and output paths are required")
	}

	keyVar := CredentialEnvVar(c.Provider)
	if strings.TrimSpace(c.APIKey) == "" {
		c.APIKey = strings.TrimSpace(getenv(keyVar))
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: set %s in the environment or a .env file", ErrMissingCredential, keyVar)
	}
	return nil
}

// CredentialEnvVar names the environment variable holding the provider key.
func CredentialEnvVar(provider string) string {
	if provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding existing values. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// WriteEnvTemplate writes a .env file with a placeholder for the provider key.
func WriteEnvTemplate(path, provider, apiKey string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if apiKey == "" {
		apiKey = "YOUR_API_KEY_HERE"
	}
	env := map[string]string{CredentialEnvVar(provider): apiKey}
	if provider == ProviderGemini {
		env["RANKER_PROVIDER"] = ProviderGemini
	}
	return godotenv.Write(env, path)
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := envString(getenv, "RANKER_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := envString(getenv, "RANKER_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := envString(getenv, "RANKER_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := envString(getenv, "LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := envString(getenv, "LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	temp, err := envFloat(getenv, "RANKER_TEMPERATURE", float64(cfg.Temperature))
	if err != nil {
		return err
	}
	cfg.Temperature = float32(temp)

	if cfg.RequestTimeout, err = envDuration(getenv, "REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return err
	}
	if cfg.RateLimitRPS, err = envFloat(getenv, "RATE_LIMIT_RPS", cfg.RateLimitRPS); err != nil {
		return err
	}
	return nil
}

func envString(getenv func(string) string, varName string) string {
	return strings.TrimSpace(getenv(varName))
}

func envFloat(getenv func(string) string, varName string, fallback float64) (float64, error) {
	v := envString(getenv, varName)
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envDuration(getenv func(string) string, varName string, fallback time.Duration) (time.Duration, error) {
	v := envString(getenv, varName)
	if v == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

// Dump renders cfg as YAML with the credential omitted.
func (c Config) Dump() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
