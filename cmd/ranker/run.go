package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/shpitdev/fdi-ranker/internal/app"
	"github.com/shpitdev/fdi-ranker/internal/config"
	"github.com/shpitdev/fdi-ranker/internal/logging"
	"github.com/shpitdev/fdi-ranker/internal/pipeline"
	"github.com/shpitdev/fdi-ranker/internal/prompt"
)

type runFlags struct {
	configPath     string
	input          string
	output         string
	provider       string
	model          string
	temperature    float32
	systemPrompt   string
	promptFile     string
	baseURL        string
	requestTimeout time.Duration
	rateLimitRPS   float64
	logLevel       string
	logFormat      string
	printConfig    bool
}

func newRunCmd(env cliEnv) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rank every company in the input CSV",
		Long:  "Reads the input CSV, requests one analysis per row, and writes each enriched row to the output CSV as soon as it is ready.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRank(cmd, env, f)
		},
	}

	defaults := config.Defaults()
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "Optional YAML config file")
	fl.StringVarP(&f.input, "input", "i", defaults.Input, "Input CSV file path")
	fl.StringVarP(&f.output, "output", "o", defaults.Output, "Output CSV file path")
	fl.StringVar(&f.provider, "provider", defaults.Provider, "LLM provider: openai or gemini (env: RANKER_PROVIDER)")
	fl.StringVar(&f.model, "model", "", "Model name, provider default when empty (env: RANKER_MODEL)")
	fl.Float32Var(&f.temperature, "temperature", defaults.Temperature, "Sampling temperature (env: RANKER_TEMPERATURE)")
	fl.StringVar(&f.systemPrompt, "system-prompt", defaults.SystemPrompt, "System message sent with every prompt")
	fl.StringVar(&f.promptFile, "prompt-file", "", "Replace the built-in prompt template")
	fl.StringVar(&f.baseURL, "base-url", "", "API base URL override (env: RANKER_BASE_URL)")
	fl.DurationVar(&f.requestTimeout, "request-timeout", defaults.RequestTimeout, "Per-row request timeout, 0 disables (env: REQUEST_TIMEOUT)")
	fl.Float64Var(&f.rateLimitRPS, "rate-limit-rps", defaults.RateLimitRPS, "Request rate limit (RPS), 0 disables (env: RATE_LIMIT_RPS)")
	fl.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "debug, info, warn or error (env: LOG_LEVEL)")
	fl.StringVar(&f.logFormat, "log-format", defaults.LogFormat, "console or json (env: LOG_FORMAT)")
	fl.BoolVar(&f.printConfig, "print-config", false, "Print the resolved config and exit")
	return cmd
}

// applyFlags overrides cfg with every flag the user set explicitly.
func applyFlags(cfg *config.Config, fl *pflag.FlagSet, f runFlags) {
	set := func(name string, apply func()) {
		if fl.Changed(name) {
			apply()
		}
	}
	set("input", func() { cfg.Input = f.input })
	set("output", func() { cfg.Output = f.output })
	set("provider", func() { cfg.Provider = f.provider })
	set("model", func() { cfg.Model = f.model })
	set("temperature", func() { cfg.Temperature = f.temperature })
	set("system-prompt", func() { cfg.SystemPrompt = f.systemPrompt })
	set("prompt-file", func() { cfg.PromptFile = f.promptFile })
	set("base-url", func() { cfg.BaseURL = f.baseURL })
	set("request-timeout", func() { cfg.RequestTimeout = f.requestTimeout })
	set("rate-limit-rps", func() { cfg.RateLimitRPS = f.rateLimitRPS })
	set("log-level", func() { cfg.LogLevel = f.logLevel })
	set("log-format", func() { cfg.LogFormat = f.logFormat })
}

func runRank(cmd *cobra.Command, env cliEnv, f runFlags) error {
	cfg, err := config.Load(f.configPath, env.getenv)
	if err != nil {
		return &configError{err: err}
	}
	applyFlags(&cfg, cmd.Flags(), f)

	if f.printConfig {
		out, err := cfg.Dump()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write([]byte(out))
		return err
	}

	if err := cfg.Finalize(env.getenv); err != nil {
		return &configError{err: err}
	}

	logger, err := logging.New(env.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return &configError{err: err}
	}
	defer func() {
		_ = logger.Sync()
	}()

	prompts, err := prompt.FromFile(cfg.PromptFile)
	if err != nil {
		return &configError{err: err}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	requester, model, err := app.NewRequester(ctx, cfg)
	if err != nil {
		return &configError{err: err}
	}
	logger.Info("config resolved",
		zap.String("provider", cfg.Provider),
		zap.String("model", model),
		zap.Float32("temperature", cfg.Temperature),
		zap.String("input", cfg.Input),
		zap.String("output", cfg.Output),
	)

	_, err = app.RunLocal(ctx, cfg.Input, cfg.Output, pipeline.Options{
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
	}, prompts, requester, logger)
	return err
}
