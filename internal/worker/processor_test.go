package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademkt/image-audit/internal/vision"
	"github.com/trademkt/image-audit/internal/worker/domain"
)

type fakeJobStore struct {
	record          *domain.Processamento
	erroMensagens   []string
	retryMensagens  []string
	concluidoCalled bool
}

func (f *fakeJobStore) GetProcessamento(_ context.Context, _ string) (*domain.Processamento, error) {
	if f.record == nil {
		return nil, domain.ErrProcessamentoNotFound
	}
	return f.record, nil
}

func (f *fakeJobStore) MarkConcluido(_ context.Context, _ string, _ []byte, _ int64) error {
	f.concluidoCalled = true
	return nil
}

func (f *fakeJobStore) MarkErro(_ context.Context, _ string, mensagem string, _ int64) error {
	f.erroMensagens = append(f.erroMensagens, mensagem)
	return nil
}

func (f *fakeJobStore) MarkErroRetry(_ context.Context, _ string, mensagem string, _ int64) (int, error) {
	f.retryMensagens = append(f.retryMensagens, mensagem)
	return len(f.retryMensagens), nil
}

func (f *fakeJobStore) SetImagemURL(_ context.Context, _, _ string) error {
	return nil
}

func newTestWorker(store *fakeJobStore) *Worker {
	return &Worker{
		logger:     slog.New(slog.DiscardHandler),
		storage:    store,
		maxRetries: 3,
	}
}

func TestHandleFailureRetriablePersistsFailure(t *testing.T) {
	store := &fakeJobStore{}
	w := newTestWorker(store)

	record := &domain.Processamento{
		ID:         "job-1",
		Tipo:       domain.TipoAnaliseFotos,
		Status:     domain.StatusProcessando,
		RetryCount: 0,
		MaxRetries: 3,
	}
	jobErr := errors.New("request timed out")

	err := w.handleFailure(context.Background(), record, jobErr, 150)

	// The failure is written before the requeue, so a status read during
	// the retry window sees erro with the message
	require.Equal(t, []string{"request timed out"}, store.retryMensagens)
	assert.Empty(t, store.erroMensagens)
	assert.True(t, w.shouldRequeueJob(err))
}

func TestHandleFailureTerminalMarksErro(t *testing.T) {
	store := &fakeJobStore{}
	w := newTestWorker(store)

	record := &domain.Processamento{
		ID:         "job-2",
		Tipo:       domain.TipoAnaliseFotos,
		MaxRetries: 3,
	}
	jobErr := vision.ErrUnsupportedModel

	err := w.handleFailure(context.Background(), record, jobErr, 10)

	require.Len(t, store.erroMensagens, 1)
	assert.Empty(t, store.retryMensagens)
	assert.False(t, w.shouldRequeueJob(err))
}

func TestHandleFailureExhaustedBudget(t *testing.T) {
	store := &fakeJobStore{}
	w := newTestWorker(store)

	record := &domain.Processamento{
		ID:         "job-3",
		Tipo:       domain.TipoPlantas,
		RetryCount: 3,
		MaxRetries: 3,
	}
	jobErr := errors.New("request timed out")

	err := w.handleFailure(context.Background(), record, jobErr, 10)

	require.ErrorIs(t, err, domain.ErrMaxRetriesExceeded)
	require.Len(t, store.erroMensagens, 1)
	assert.Empty(t, store.retryMensagens)
	assert.False(t, w.shouldRequeueJob(err))
}

func TestHandleFailureBudgetFallsBackToWorkerConfig(t *testing.T) {
	store := &fakeJobStore{}
	w := newTestWorker(store)

	// A record without its own budget uses the worker's configured one
	record := &domain.Processamento{
		ID:         "job-4",
		Tipo:       domain.TipoPlantas,
		RetryCount: 1,
		MaxRetries: 0,
	}

	err := w.handleFailure(context.Background(), record, errors.New("boom"), 10)

	require.Len(t, store.retryMensagens, 1)
	assert.True(t, w.shouldRequeueJob(err))
}

func TestProcessJobSkipsCompletedDelivery(t *testing.T) {
	store := &fakeJobStore{
		record: &domain.Processamento{
			ID:     "job-5",
			Tipo:   domain.TipoAnaliseFotos,
			Status: domain.StatusConcluido,
		},
	}
	w := newTestWorker(store)

	msg := &domain.JobMessage{JobID: "job-5", Tipo: domain.TipoAnaliseFotos}
	err := w.processJob(context.Background(), msg)

	require.NoError(t, err)
	assert.False(t, store.concluidoCalled)
	assert.Empty(t, store.erroMensagens)
	assert.Empty(t, store.retryMensagens)
}
