package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trademkt/image-audit/internal/fetcher"
	"github.com/trademkt/image-audit/internal/ocr"
	"github.com/trademkt/image-audit/internal/vision"
	"github.com/trademkt/image-audit/internal/worker/domain"
	"github.com/trademkt/image-audit/internal/worker/storage"
	"github.com/trademkt/image-audit/shared/objectstore"
	"github.com/trademkt/image-audit/shared/postgresql"
	"github.com/trademkt/image-audit/shared/rabbitmq"
)

// Config holds worker configuration
type Config struct {
	Logger              *slog.Logger
	DBClient            *postgresql.Client
	RabbitClient        *rabbitmq.Client
	ObjectStore         *objectstore.Client
	Fetcher             *fetcher.Fetcher
	Extractor           *ocr.Extractor
	LLMConfig           vision.Config
	DefaultModel        string
	BucketPlantas       string
	BucketAuditoria     string
	Queues              []string
	PrefetchCount       int
	Concurrency         int
	SoftTimeLimit       time.Duration
	HardTimeLimit       time.Duration
	MaxRetries          int
	RetryBaseDelay      time.Duration
	ConfidenceThreshold float64
}

// jobStore is the slice of the storage layer the processing path uses
type jobStore interface {
	GetProcessamento(ctx context.Context, id string) (*domain.Processamento, error)
	MarkConcluido(ctx context.Context, id string, resultado []byte, tempoMS int64) error
	MarkErro(ctx context.Context, id, mensagem string, tempoMS int64) error
	MarkErroRetry(ctx context.Context, id, mensagem string, tempoMS int64) (int, error)
	SetImagemURL(ctx context.Context, id, url string) error
}

// Worker consumes the kind queues and runs the image pipelines
type Worker struct {
	logger              *slog.Logger
	storage             jobStore
	rabbitClient        *rabbitmq.Client
	objectStore         *objectstore.Client
	fetcher             *fetcher.Fetcher
	extractor           *ocr.Extractor
	llmConfig           vision.Config
	defaultModel        string
	bucketPlantas       string
	bucketAuditoria     string
	queues              []string
	prefetchCount       int
	concurrency         int
	softTimeLimit       time.Duration
	hardTimeLimit       time.Duration
	maxRetries          int
	retryBaseDelay      time.Duration
	confidenceThreshold float64
	workerID            string
	jobsChan            chan *domain.JobMessage
	wg                  sync.WaitGroup
	stopChan            chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		logger:              cfg.Logger,
		storage:             storage.NewStorage(cfg.DBClient.GetDB(), cfg.Logger),
		rabbitClient:        cfg.RabbitClient,
		objectStore:         cfg.ObjectStore,
		fetcher:             cfg.Fetcher,
		extractor:           cfg.Extractor,
		llmConfig:           cfg.LLMConfig,
		defaultModel:        cfg.DefaultModel,
		bucketPlantas:       cfg.BucketPlantas,
		bucketAuditoria:     cfg.BucketAuditoria,
		queues:              cfg.Queues,
		prefetchCount:       cfg.PrefetchCount,
		concurrency:         cfg.Concurrency,
		softTimeLimit:       cfg.SoftTimeLimit,
		hardTimeLimit:       cfg.HardTimeLimit,
		maxRetries:          cfg.MaxRetries,
		retryBaseDelay:      cfg.RetryBaseDelay,
		confidenceThreshold: cfg.ConfidenceThreshold,
		workerID:            fmt.Sprintf("worker-%s", uuid.New().String()[:8]),
		jobsChan:            make(chan *domain.JobMessage, cfg.Concurrency),
		stopChan:            make(chan struct{}),
	}
}

// Start begins consuming the kind queues and processing jobs. It blocks
// until the context is canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("soft_time_limit", w.softTimeLimit),
		slog.Duration("hard_time_limit", w.hardTimeLimit),
	)

	if err := w.setupConsumers(ctx); err != nil {
		return fmt.Errorf("failed to setup consumers: %w", err)
	}

	w.spawnWorkerPool(ctx)

	<-ctx.Done()
	w.logger.Info("Worker context canceled, stopping...")

	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...",
		slog.String("worker_id", w.workerID),
	)
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
