package planogram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trademkt/image-audit/internal/evidence"
	"github.com/trademkt/image-audit/internal/ocr"
	"github.com/trademkt/image-audit/internal/vision"
)

// Service maps warehouse addresses out of floor plan images. OCR runs first
// to pin down what text actually exists; the vision model is then constrained
// to that evidence so it cannot hallucinate address codes.
type Service struct {
	extractor *ocr.Extractor
	backend   vision.Backend
	model     string
	threshold float64
	logger    *slog.Logger
}

func NewService(extractor *ocr.Extractor, backend vision.Backend, model string, threshold float64, logger *slog.Logger) *Service {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Service{
		extractor: extractor,
		backend:   backend,
		model:     model,
		threshold: threshold,
		logger:    logger,
	}
}

// MapAddresses runs the full mapping pipeline over a floor plan image:
// text detection, evidence normalization, LLM analysis grounded on the
// evidence manifest, and confidence-gated consolidation.
func (s *Service) MapAddresses(ctx context.Context, imageBytes []byte) (*MappingResult, error) {
	ocrResult, err := s.extractor.DetectText(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("detecting text: %w", err)
	}

	normalized := evidence.Normalize(ocrResult.Detections, ocrResult.Width, ocrResult.Height)
	s.logger.Info("ocr evidence collected",
		slog.Int("detections", len(normalized)),
		slog.String("model", s.model))

	prompt := buildPrompt(normalized)
	raw, err := s.backend.Analyze(ctx, imageBytes, prompt, s.model)
	if err != nil {
		return nil, fmt.Errorf("analyzing floor plan: %w", err)
	}

	var proposal rawMapping
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&proposal); err != nil {
		return nil, errors.Join(vision.ErrLLMResponseParse, err)
	}

	result := consolidate(proposal, s.threshold)
	s.logger.Info("mapping consolidated",
		slog.Int("detectada", result.Relatorio.QuantidadeDetectada),
		slog.Int("cadastravel", result.Relatorio.QuantidadeCadastravel),
		slog.Int("descartada", result.Relatorio.QuantidadeDescartada))
	return result, nil
}

func buildPrompt(normalized []evidence.Normalized) string {
	if len(normalized) == 0 {
		return basePrompt + "\n\nNenhuma evidência de OCR foi detectada nesta imagem. Se nenhum endereço for legível, retorne listas vazias."
	}
	return basePrompt + "\n\n" + evidence.BuildManifest(normalized)
}
