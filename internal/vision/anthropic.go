package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const anthropicAPIVersion = "2023-06-01"

// anthropicBackend drives Claude-family models through the messages API.
// Replies are free text that usually wraps the JSON in a fenced block.
type anthropicBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func (b *anthropicBackend) Name() string {
	return "anthropic"
}

func (b *anthropicBackend) Analyze(ctx context.Context, imageBytes []byte, prompt, model string) (json.RawMessage, error) {
	start := time.Now()
	imageB64 := base64.StdEncoding.EncodeToString(imageBytes)

	body := map[string]any{
		"model":       model,
		"max_tokens":  maxOutputTokens,
		"temperature": temperature,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "image",
						"source": map[string]any{
							"type":       "base64",
							"media_type": "image/jpeg",
							"data":       imageB64,
						},
					},
					{"type": "text", "text": prompt},
				},
			},
		},
	}

	endpoint := strings.TrimRight(b.baseURL, "/") + "/messages"
	raw, err := postJSON(ctx, b.httpClient, endpoint, body, map[string]string{
		"x-api-key":         b.apiKey,
		"anthropic-version": anthropicAPIVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	var msg struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: decoding anthropic envelope: %v", ErrLLMResponseParse, err)
	}
	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("%w: empty anthropic response", ErrLLMResponseParse)
	}

	result, err := ExtractJSON(msg.Content[0].Text)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("LLM analysis completed",
		slog.String("backend", b.Name()),
		slog.String("model", model),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return result, nil
}
