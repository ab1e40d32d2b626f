package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// openAIBackend drives GPT-family models through chat/completions. This
// family supports a structured-output mode, so the reply body is requested
// and parsed as a JSON object directly.
type openAIBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func (b *openAIBackend) Name() string {
	return "openai"
}

func (b *openAIBackend) Analyze(ctx context.Context, imageBytes []byte, prompt, model string) (json.RawMessage, error) {
	start := time.Now()
	imageB64 := base64.StdEncoding.EncodeToString(imageBytes)

	body := map[string]any{
		"model":           model,
		"max_tokens":      maxOutputTokens,
		"temperature":     temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompt},
					{
						"type": "image_url",
						"image_url": map[string]any{
							"url":    "data:image/jpeg;base64," + imageB64,
							"detail": "high",
						},
					},
				},
			},
		},
	}

	endpoint := strings.TrimRight(b.baseURL, "/") + "/chat/completions"
	raw, err := postJSON(ctx, b.httpClient, endpoint, body, map[string]string{
		"Authorization": "Bearer " + b.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("%w: decoding openai envelope: %v", ErrLLMResponseParse, err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in openai response", ErrLLMResponseParse)
	}

	result, err := ExtractJSON(cc.Choices[0].Message.Content)
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

// postJSON sends a JSON body and returns the raw response bytes, treating any
// non-2xx status as an error with the body included.
func postJSON(ctx context.Context, client *http.Client, url string, body map[string]any, headers map[string]string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
