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

// geminiBackend drives Gemini-family models through generateContent. Like
// Anthropic, the reply is free text and the JSON must be dug out of it.
type geminiBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func (b *geminiBackend) Name() string {
	return "gemini"
}

func (b *geminiBackend) Analyze(ctx context.Context, imageBytes []byte, prompt, model string) (json.RawMessage, error) {
	start := time.Now()
	imageB64 := base64.StdEncoding.EncodeToString(imageBytes)

	body := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": prompt},
					{
						"inline_data": map[string]any{
							"mime_type": "image/jpeg",
							"data":      imageB64,
						},
					},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     temperature,
			"maxOutputTokens": maxOutputTokens,
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(b.baseURL, "/"), model, b.apiKey)
	raw, err := postJSON(ctx, b.httpClient, endpoint, body, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	var gen struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, fmt.Errorf("%w: decoding gemini envelope: %v", ErrLLMResponseParse, err)
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty gemini response", ErrLLMResponseParse)
	}

	result, err := ExtractJSON(gen.Candidates[0].Content.Parts[0].Text)
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
