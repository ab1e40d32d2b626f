package vision

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewBackendDispatch(t *testing.T) {
	tests := []struct {
		model    string
		wantName string
		wantErr  bool
	}{
		{model: "gpt-4o", wantName: "openai"},
		{model: "gpt-4o-mini", wantName: "openai"},
		{model: "claude-3-5-sonnet", wantName: "anthropic"},
		{model: "gemini-pro-vision", wantName: "gemini"},
		{model: "llama-3", wantErr: true},
		{model: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			backend, err := NewBackend(tt.model, Config{}, testLogger())
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedModel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, backend.Name())
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"nota": 8}`,
			want:  `{"nota": 8}`,
		},
		{
			name:  "fenced block",
			input: "Here is the result:\n```json\n{\"nota\": 8}\n```\nDone.",
			want:  `{"nota": 8}`,
		},
		{
			name:  "fenced block with surrounding whitespace",
			input: "```json\n  {\"enderecos\": []}  \n```",
			want:  `{"enderecos": []}`,
		},
		{
			name:  "unterminated fence parses the remainder",
			input: "```json\n{\"nota\": 8}",
			want:  `{"nota": 8}`,
		},
		{
			name:    "unterminated fence with no object after it",
			input:   "```json\nsorry, could not finish",
			wantErr: true,
		},
		{
			name:    "no json at all",
			input:   "I could not analyze this image.",
			wantErr: true,
		},
		{
			name:    "json array instead of object",
			input:   `[1, 2, 3]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrLLMResponseParse)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestOpenAIAnalyze(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"nota": 9}`}},
			},
		})
	}))
	defer srv.Close()

	backend, err := NewBackend("gpt-4o", Config{OpenAIAPIKey: "test-key", OpenAIBaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	got, err := backend.Analyze(context.Background(), []byte("img"), "audit this", "gpt-4o")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nota": 9}`, string(got))

	assert.Equal(t, "gpt-4o", captured["model"])
	assert.Equal(t, float64(2000), captured["max_tokens"])
	assert.Equal(t, 0.1, captured["temperature"])
	rf := captured["response_format"].(map[string]any)
	assert.Equal(t, "json_object", rf["type"])
}

func TestAnthropicAnalyzeFencedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "```json\n{\"enderecos\": []}\n```"},
			},
		})
	}))
	defer srv.Close()

	backend, err := NewBackend("claude-3-5-sonnet", Config{AnthropicAPIKey: "test-key", AnthropicBaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	got, err := backend.Analyze(context.Background(), []byte("img"), "map this", "claude-3-5-sonnet")
	require.NoError(t, err)
	assert.JSONEq(t, `{"enderecos": []}`, string(got))
}

func TestGeminiAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-pro-vision:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": `{"alertas": []}`},
				}}},
			},
		})
	}))
	defer srv.Close()

	backend, err := NewBackend("gemini-pro-vision", Config{GoogleAPIKey: "test-key", GeminiBaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	got, err := backend.Analyze(context.Background(), []byte("img"), "map this", "gemini-pro-vision")
	require.NoError(t, err)
	assert.JSONEq(t, `{"alertas": []}`, string(got))
}

func TestAnalyzeHTTPErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	backend, err := NewBackend("gpt-4o", Config{OpenAIBaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	_, err = backend.Analyze(context.Background(), []byte("img"), "audit", "gpt-4o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
