// Package gemini implements analysis.Requester on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"

	"github.com/shpitdev/fdi-ranker/internal/analysis"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL      string
	SystemPrompt string
	Temperature  float32
}

type Requester struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func New(ctx context.Context, cfg Config) (*Requester, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	gc := &genai.GenerateContentConfig{
		CandidateCount: 1,
		Temperature:    genai.Ptr(cfg.Temperature),
	}
	if strings.TrimSpace(cfg.SystemPrompt) != "" {
		gc.SystemInstruction = genai.NewContentFromText(cfg.SystemPrompt, genai.RoleUser)
	}

	return &Requester{
		client: client,
		model:  model,
		config: gc,
	}, nil
}

// Model is the model name sent with each request.
func (r *Requester) Model() string {
	return r.model
}

func (r *Requester) RequestAnalysis(ctx context.Context, prompt string) (string, error) {
	resp, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(prompt), r.config)
	if err != nil {
		return "", classifyErr(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code/100 == 5 {
			return &analysis.TransientError{Err: err}
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &analysis.TransientError{Err: err}
	}
	return err
}

var _ analysis.Requester = (*Requester)(nil)
