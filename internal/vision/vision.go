// Package vision abstracts the vision-capable LLM backends. A single Backend
// capability covers all provider families; the family is selected once, by
// model-name prefix, when the backend is constructed.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnsupportedModel is returned when the model name matches no known
	// backend family. This is a configuration error, not a transient one.
	ErrUnsupportedModel = errors.New("unsupported model")

	// ErrLLMResponseParse is returned when no valid JSON object can be
	// extracted from a backend response.
	ErrLLMResponseParse = errors.New("failed to parse LLM response")
)

// Sampling parameters shared by every backend. Low temperature keeps repeated
// audits of the same image as deterministic as the providers allow.
const (
	temperature     = 0.1
	maxOutputTokens = 2000
)

// Backend analyzes one image against one prompt and returns the structured
// JSON object the model produced.
type Backend interface {
	Name() string
	Analyze(ctx context.Context, imageBytes []byte, prompt, model string) (json.RawMessage, error)
}

// Config carries provider credentials and endpoints. Backends are stateless
// request-scoped values around a shared http.Client; they are safe to use
// from concurrent jobs.
type Config struct {
	OpenAIAPIKey     string
	AnthropicAPIKey  string
	GoogleAPIKey     string
	OpenAIBaseURL    string
	AnthropicBaseURL string
	GeminiBaseURL    string
	RequestTimeout   time.Duration
}

// NewBackend selects the backend family for the given model name. Names
// starting with "gpt" go to OpenAI, "claude" to Anthropic, "gemini" to
// Gemini; anything else is ErrUnsupportedModel.
func NewBackend(model string, cfg Config, logger *slog.Logger) (Backend, error) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	switch {
	case strings.HasPrefix(model, "gpt"):
		return &openAIBackend{
			apiKey:     cfg.OpenAIAPIKey,
			baseURL:    defaultString(cfg.OpenAIBaseURL, "https://api.openai.com/v1"),
			httpClient: httpClient,
			logger:     logger,
		}, nil
	case strings.HasPrefix(model, "claude"):
		return &anthropicBackend{
			apiKey:     cfg.AnthropicAPIKey,
			baseURL:    defaultString(cfg.AnthropicBaseURL, "https://api.anthropic.com/v1"),
			httpClient: httpClient,
			logger:     logger,
		}, nil
	case strings.HasPrefix(model, "gemini"):
		return &geminiBackend{
			apiKey:     cfg.GoogleAPIKey,
			baseURL:    defaultString(cfg.GeminiBaseURL, "https://generativelanguage.googleapis.com/v1beta"),
			httpClient: httpClient,
			logger:     logger,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, model)
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
