package domain

import "errors"

var (
	// ErrProcessamentoNotFound is returned when a queued job has no database record
	ErrProcessamentoNotFound = errors.New("processamento not found")

	// ErrInvalidPayload is returned when the queue message JSON is malformed
	ErrInvalidPayload = errors.New("invalid job payload")

	// ErrMaxRetriesExceeded is returned when a job has exhausted its retry budget
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrHardTimeLimit is returned when a job overran the hard processing limit
	ErrHardTimeLimit = errors.New("hard time limit exceeded")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
