package planogram

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademkt/image-audit/internal/ocr"
)

type fakeEngine struct {
	detections []ocr.Detection
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(_ context.Context, _ *image.Gray) ([]ocr.Detection, error) {
	return f.detections, nil
}

type fakeBackend struct {
	response   string
	lastPrompt string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Analyze(_ context.Context, _ []byte, prompt, _ string) (json.RawMessage, error) {
	f.lastPrompt = prompt
	return json.RawMessage(f.response), nil
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCoerceConfidence(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"float", 0.87, 0.87},
		{"numeric string", "0.75", 0.75},
		{"unparsable string", "alta", 0.5},
		{"nil", nil, 0.0},
		{"bool", true, 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, coerceConfidence(tc.value), 1e-9)
		})
	}
}

func TestConsolidateThresholdBoundary(t *testing.T) {
	raw := rawMapping{
		Enderecos: []rawAddress{
			{Codigo: "R01-P02", Confidence: 0.40},
			{Codigo: "R01-P03", Confidence: 0.399999},
		},
	}

	result := consolidate(raw, DefaultConfidenceThreshold)

	require.Len(t, result.Enderecos, 1)
	assert.Equal(t, "R01-P02", result.Enderecos[0].Codigo)
	assert.Equal(t, 2, result.Relatorio.QuantidadeDetectada)
	assert.Equal(t, 1, result.Relatorio.QuantidadeCadastravel)
	assert.Equal(t, 1, result.Relatorio.QuantidadeDescartada)
}

func TestConsolidateCounts(t *testing.T) {
	raw := rawMapping{
		Enderecos: []rawAddress{
			{Codigo: "A", Confidence: 0.95},
			{Codigo: "B", Confidence: "0.2"},
			{Codigo: "C", Confidence: "ilegível"},
			{Codigo: "D", Confidence: nil},
			{Codigo: "E", Confidence: 0.41},
		},
	}

	result := consolidate(raw, DefaultConfidenceThreshold)

	assert.Equal(t, 5, result.Relatorio.QuantidadeDetectada)
	assert.Equal(t, result.Relatorio.QuantidadeDetectada,
		result.Relatorio.QuantidadeCadastravel+result.Relatorio.QuantidadeDescartada)
	// "ilegível" coerces to 0.5 and passes; numeric 0.2 and nil do not.
	assert.Equal(t, 3, result.Relatorio.QuantidadeCadastravel)
}

func TestMapAddressesPipeline(t *testing.T) {
	engine := &fakeEngine{detections: []ocr.Detection{
		{
			Text:       "R01-P02",
			Polygon:    [4]ocr.Point{{X: 0, Y: 0}, {X: 16, Y: 0}, {X: 16, Y: 8}, {X: 0, Y: 8}},
			Confidence: 0.9,
		},
	}}
	backend := &fakeBackend{response: `{
		"enderecos": [
			{"codigo": "R01-P02", "nome": "Rua 1 Posição 2", "tipo_endereco_id": 1,
			 "confidence": "0.91", "x_pct": 0.25, "y_pct": 0.125, "alertas": []},
			{"codigo": "R01-P09", "nome": "duvidoso", "tipo_endereco_id": 1,
			 "confidence": 0.1, "x_pct": 0.5, "y_pct": 0.5}
		],
		"alertas": ["imagem parcialmente cortada"]
	}`}

	logger := slog.New(slog.DiscardHandler)
	svc := NewService(ocr.NewExtractor(engine, logger), backend, "gpt-4o", 0, logger)

	result, err := svc.MapAddresses(context.Background(), testImage(t))
	require.NoError(t, err)

	assert.Contains(t, backend.lastPrompt, "EVIDÊNCIAS DE TEXTO DETECTADAS")
	assert.Contains(t, backend.lastPrompt, "[ID: 1] TEXTO: 'R01-P02'")

	require.Len(t, result.Enderecos, 1)
	assert.Equal(t, "R01-P02", result.Enderecos[0].Codigo)
	assert.InDelta(t, 0.91, result.Enderecos[0].Confidence, 1e-9)
	assert.Equal(t, []string{"imagem parcialmente cortada"}, result.Alertas)
	assert.Equal(t, 2, result.Relatorio.QuantidadeDetectada)
	assert.Equal(t, 1, result.Relatorio.QuantidadeDescartada)
}

func TestMapAddressesIdempotent(t *testing.T) {
	engine := &fakeEngine{}
	backend := &fakeBackend{response: `{"enderecos": [], "alertas": []}`}

	logger := slog.New(slog.DiscardHandler)
	svc := NewService(ocr.NewExtractor(engine, logger), backend, "gpt-4o", 0, logger)

	img := testImage(t)
	first, err := svc.MapAddresses(context.Background(), img)
	require.NoError(t, err)
	second, err := svc.MapAddresses(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, first.Enderecos)
	assert.Equal(t, 0, first.Relatorio.QuantidadeDetectada)
}
