package worker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"time"

	"github.com/trademkt/image-audit/internal/audit"
	"github.com/trademkt/image-audit/internal/planogram"
	"github.com/trademkt/image-audit/internal/vision"
	"github.com/trademkt/image-audit/internal/worker/domain"
)

// processJob runs one queued job end to end: load the record, execute the
// pipeline under the time limits, persist the outcome controlling the retry
// budget. The returned error drives the ACK/NACK decision in the pool.
func (w *Worker) processJob(ctx context.Context, msg *domain.JobMessage) error {
	w.logger.Info("Processing job",
		slog.String("job_id", msg.JobID),
		slog.String("tipo", msg.Tipo),
		slog.String("worker_id", w.workerID),
	)

	record, err := w.storage.GetProcessamento(ctx, msg.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrProcessamentoNotFound) {
			// A message without a record cannot succeed later either
			w.logger.Warn("Job has no database record, dropping",
				slog.String("job_id", msg.JobID),
			)
			return err
		}
		return domain.NewRetryableError(fmt.Errorf("failed to load processamento: %w", err))
	}

	// Redeliveries after a worker crash can race with an already stored
	// result; a finished job is never reprocessed
	if record.Status == domain.StatusConcluido {
		w.logger.Warn("Job already completed, skipping duplicate delivery",
			slog.String("job_id", msg.JobID),
		)
		return nil
	}

	start := time.Now()
	payload, err := w.runWithLimits(ctx, msg)
	tempoMS := time.Since(start).Milliseconds()

	if err != nil {
		return w.handleFailure(ctx, record, err, tempoMS)
	}

	if markErr := w.storage.MarkConcluido(ctx, record.ID, payload, tempoMS); markErr != nil {
		w.logger.Error("Failed to mark job as completed",
			slog.String("job_id", record.ID),
			slog.String("error", markErr.Error()),
		)
		// The pipeline succeeded; ACK anyway rather than burn another LLM call
	}

	return nil
}

// runWithLimits executes the pipeline under the soft limit (context
// cancellation) and the hard limit (watchdog that abandons the goroutine).
func (w *Worker) runWithLimits(ctx context.Context, msg *domain.JobMessage) ([]byte, error) {
	softCtx, cancel := context.WithTimeout(ctx, w.softTimeLimit)
	defer cancel()

	type outcome struct {
		payload []byte
		err     error
	}

	resultChan := make(chan outcome, 1)
	go func() {
		payload, err := w.execute(softCtx, msg)
		resultChan <- outcome{payload: payload, err: err}
	}()

	watchdog := time.NewTimer(w.hardTimeLimit)
	defer watchdog.Stop()

	select {
	case res := <-resultChan:
		return res.payload, res.err
	case <-watchdog.C:
		cancel()
		w.logger.Error("Job overran hard time limit, abandoning",
			slog.String("job_id", msg.JobID),
			slog.Duration("hard_time_limit", w.hardTimeLimit),
		)
		return nil, domain.ErrHardTimeLimit
	}
}

// handleFailure persists the failure and decides the retry. Terminal errors
// and an exhausted budget finalize the record as erro; anything else bumps
// the counter, backs off, and asks for a requeue.
func (w *Worker) handleFailure(ctx context.Context, record *domain.Processamento, jobErr error, tempoMS int64) error {
	w.logger.Error("Job execution failed",
		slog.String("job_id", record.ID),
		slog.String("tipo", record.Tipo),
		slog.Int("retry_count", record.RetryCount),
		slog.String("error", jobErr.Error()),
	)

	if isTerminal(jobErr) {
		if markErr := w.storage.MarkErro(ctx, record.ID, jobErr.Error(), tempoMS); markErr != nil {
			w.logger.Error("Failed to mark job as failed",
				slog.String("job_id", record.ID),
				slog.String("error", markErr.Error()),
			)
		}
		return jobErr
	}

	maxRetries := record.MaxRetries
	if maxRetries <= 0 {
		maxRetries = w.maxRetries
	}

	if record.RetryCount >= maxRetries {
		w.logger.Warn("Job exceeded max retries",
			slog.String("job_id", record.ID),
			slog.Int("retry_count", record.RetryCount),
			slog.Int("max_retries", maxRetries),
		)
		if markErr := w.storage.MarkErro(ctx, record.ID, jobErr.Error(), tempoMS); markErr != nil {
			w.logger.Error("Failed to mark job as failed",
				slog.String("job_id", record.ID),
				slog.String("error", markErr.Error()),
			)
		}
		return fmt.Errorf("%w: %v", domain.ErrMaxRetriesExceeded, jobErr)
	}

	// The failure is persisted before the requeue so a status read during
	// the retry window reports erro with the attempt's message, not a bare
	// processando
	attempt := record.RetryCount
	if newCount, markErr := w.storage.MarkErroRetry(ctx, record.ID, jobErr.Error(), tempoMS); markErr != nil {
		w.logger.Error("Failed to record retry failure",
			slog.String("job_id", record.ID),
			slog.String("error", markErr.Error()),
		)
	} else {
		w.logger.Info("Job will be retried",
			slog.String("job_id", record.ID),
			slog.Int("retry_count", newCount),
			slog.Int("max_retries", maxRetries),
		)
	}

	w.backoff(ctx, attempt)

	return domain.NewRetryableError(jobErr)
}

// backoff sleeps base * 2^attempt before the NACK so the requeued message
// does not come straight back to a hot failure.
func (w *Worker) backoff(ctx context.Context, attempt int) {
	if w.retryBaseDelay <= 0 {
		return
	}

	delay := w.retryBaseDelay << uint(attempt)
	w.logger.Info("Backing off before requeue",
		slog.Duration("delay", delay),
		slog.Int("attempt", attempt),
	)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// execute dispatches the job to its kind's pipeline
func (w *Worker) execute(ctx context.Context, msg *domain.JobMessage) ([]byte, error) {
	switch msg.Tipo {
	case domain.TipoAnaliseFotos:
		return w.executeAudit(ctx, msg)
	case domain.TipoPlantas:
		return w.executePlantas(ctx, msg)
	default:
		return nil, fmt.Errorf("%w: unknown tipo %q", domain.ErrInvalidPayload, msg.Tipo)
	}
}

// executeAudit runs the point-of-sale audit pipeline: download the image,
// archive a copy, run the vision audit, build the result payload.
func (w *Worker) executeAudit(ctx context.Context, msg *domain.JobMessage) ([]byte, error) {
	var args domain.AuditArgs
	if err := json.Unmarshal(msg.Body, &args); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if args.ImagemURL == "" {
		return nil, fmt.Errorf("%w: imagem_url is empty", domain.ErrInvalidPayload)
	}

	modelo := args.ModeloLLM
	if modelo == "" {
		modelo = w.defaultModel
	}

	backend, err := vision.NewBackend(modelo, w.llmConfig, w.logger)
	if err != nil {
		return nil, err
	}

	imageBytes, err := w.fetcher.Fetch(ctx, args.ImagemURL)
	if err != nil {
		return nil, err
	}

	storedURL, err := w.objectStore.PutImage(ctx, w.bucketAuditoria, "", filenameFromURL(args.ImagemURL), imageBytes)
	if err != nil {
		return nil, err
	}
	if err := w.storage.SetImagemURL(ctx, args.JobID, storedURL); err != nil {
		w.logger.Warn("Failed to record stored image URL",
			slog.String("job_id", args.JobID),
			slog.String("error", err.Error()),
		)
	}

	result, err := audit.NewService(backend, modelo, w.logger).Audit(ctx, imageBytes)
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]interface{}{
		"auditoria":        result,
		"modelo_llm_usado": modelo,
	})
}

// executePlantas runs the floor-plan pipeline: decode the inline image,
// upload it under the store's prefix, map the addresses.
func (w *Worker) executePlantas(ctx context.Context, msg *domain.JobMessage) ([]byte, error) {
	var args domain.PlantasArgs
	if err := json.Unmarshal(msg.Body, &args); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	imageBytes, err := base64.StdEncoding.DecodeString(args.ImagemBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: imagem_base64 is not valid base64: %v", domain.ErrInvalidPayload, err)
	}

	modelo := args.ModeloLLM
	if modelo == "" {
		modelo = w.defaultModel
	}

	backend, err := vision.NewBackend(modelo, w.llmConfig, w.logger)
	if err != nil {
		return nil, err
	}

	storedURL, err := w.objectStore.PutImage(ctx, w.bucketPlantas, args.LojaID, args.NomeArquivo, imageBytes)
	if err != nil {
		return nil, err
	}
	if err := w.storage.SetImagemURL(ctx, args.JobID, storedURL); err != nil {
		w.logger.Warn("Failed to record stored image URL",
			slog.String("job_id", args.JobID),
			slog.String("error", err.Error()),
		)
	}

	svc := planogram.NewService(w.extractor, backend, modelo, w.confidenceThreshold, w.logger)
	result, err := svc.MapAddresses(ctx, imageBytes)
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]interface{}{
		"plantas": result,
	})
}

// filenameFromURL extracts a usable object name from the source URL
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || path.Base(parsed.Path) == "/" || path.Base(parsed.Path) == "." {
		return "imagem.jpg"
	}
	return path.Base(parsed.Path)
}
