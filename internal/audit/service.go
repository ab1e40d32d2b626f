package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/trademkt/image-audit/internal/vision"
)

// Service runs promotional-asset audits through a vision-LLM backend
type Service struct {
	backend vision.Backend
	model   string
	logger  *slog.Logger
}

// NewService creates an audit service bound to one backend and model
func NewService(backend vision.Backend, model string, logger *slog.Logger) *Service {
	return &Service{
		backend: backend,
		model:   model,
		logger:  logger,
	}
}

// Audit analyzes a point-of-sale asset photo and returns the validated
// verdict. Validation is strict: a response missing any mandatory key or
// carrying an out-of-domain value is rejected whole, never patched.
func (s *Service) Audit(ctx context.Context, imageBytes []byte) (*Result, error) {
	s.logger.Info("Starting promotional-asset audit",
		slog.String("model", s.model),
		slog.Int("image_size", len(imageBytes)),
	)

	raw, err := s.backend.Analyze(ctx, imageBytes, auditPrompt, s.model)
	if err != nil {
		return nil, err
	}

	result, err := validateResult(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Audit completed",
		slog.Int("nota", result.Nota),
		slog.String("status", result.Status),
		slog.String("confianca", result.ConfiancaAvaliacao),
	)
	return result, nil
}

// validateResult enforces the mandatory-key set and the value domains of the
// raw LLM payload before the typed decode.
func validateResult(raw json.RawMessage) (*Result, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", vision.ErrLLMResponseParse, err)
	}

	var missing []string
	for _, key := range mandatoryKeys {
		if _, ok := payload[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteAuditError{MissingKeys: missing}
	}

	if err := auditSchema.Validate(payload); err != nil {
		return nil, &InvalidAuditValueError{Detail: err.Error()}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &InvalidAuditValueError{Detail: err.Error()}
	}

	return &result, nil
}
