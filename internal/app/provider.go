package app

import (
	"context"
	"fmt"

	"github.com/shpitdev/fdi-ranker/internal/analysis"
	"github.com/shpitdev/fdi-ranker/internal/analysis/gemini"
	"github.com/shpitdev/fdi-ranker/internal/analysis/openai"
	"github.com/shpitdev/fdi-ranker/internal/config"
)

// NewRequester builds the analysis client for cfg.Provider. cfg must already
// be finalized so the API key is resolved.
func NewRequester(ctx context.Context, cfg config.Config) (analysis.Requester, string, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		r, err := openai.New(openai.Config{
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			BaseURL:      cfg.BaseURL,
			SystemPrompt: cfg.SystemPrompt,
			Temperature:  cfg.Temperature,
		})
		if err != nil {
			return nil, "", err
		}
		return r, r.Model(), nil
	case config.ProviderGemini:
		r, err := gemini.New(ctx, gemini.Config{
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			BaseURL:      cfg.BaseURL,
			SystemPrompt: cfg.SystemPrompt,
			Temperature:  cfg.Temperature,
		})
		if err != nil {
			return nil, "", err
		}
		return r, r.Model(), nil
	default:
		return nil, "", fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
