package worker

import (
	"errors"

	"github.com/trademkt/image-audit/internal/vision"
	"github.com/trademkt/image-audit/internal/worker/domain"
)

// isTerminal reports whether a pipeline error can never succeed on retry.
// An unknown model name stays wrong no matter how often the job reruns, as
// does a message the worker cannot decode. Everything else, including
// malformed LLM output and incomplete audits, gets another attempt within
// the retry budget: vision models are nondeterministic enough that a rerun
// regularly produces a valid result.
func isTerminal(err error) bool {
	switch {
	case errors.Is(err, vision.ErrUnsupportedModel):
		return true
	case errors.Is(err, domain.ErrInvalidPayload):
		return true
	case errors.Is(err, domain.ErrProcessamentoNotFound):
		return true
	default:
		return false
	}
}
