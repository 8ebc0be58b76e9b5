// Package openai implements analysis.Requester on the Chat Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/shpitdev/fdi-ranker/internal/analysis"
)

const (
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultModel        = "gpt-4"
	DefaultSystemPrompt = "You are a helpful AI FDI analyst."
	DefaultTemperature  = 0.4
)

type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API root (proxies, Azure-compatible gateways, tests).
	BaseURL      string
	SystemPrompt string
	Temperature  float32

	// HTTPClient defaults to http.DefaultClient. Request deadlines come from ctx.
	HTTPClient *http.Client
}

type Requester struct {
	apiKey       string
	model        string
	endpoint     string
	systemPrompt string
	temperature  float32
	httpClient   *http.Client
}

func New(cfg Config) (*Requester, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	system := cfg.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Requester{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		model:        model,
		endpoint:     base + "/chat/completions",
		systemPrompt: system,
		temperature:  cfg.Temperature,
		httpClient:   hc,
	}, nil
}

// Model is the model name sent with each request.
func (r *Requester) Model() string {
	return r.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (r *Requester) RequestAnalysis(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: r.systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: r.temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", classifyErr(fmt.Errorf("openai request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai read body: %w", err)
	}

	var parsed chatResponse
	parseErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode/100 != 2 {
		msg := resp.Status
		if parseErr == nil && parsed.Error != nil {
			msg = fmt.Sprintf("%s: %s (%s)", resp.Status, parsed.Error.Message, parsed.Error.Type)
		}
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: msg}
		return "", classifyErr(statusErr)
	}
	if parseErr != nil {
		return "", fmt.Errorf("openai response parse: %w", parseErr)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// StatusError is a non-2xx Chat Completions response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return "openai api error: " + e.Message
}

func classifyErr(err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		if se.StatusCode == http.StatusTooManyRequests || se.StatusCode/100 == 5 {
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
