package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/trademkt/image-audit/internal/worker/domain"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// GetProcessamento retrieves a job record by its ID
func (s *Storage) GetProcessamento(ctx context.Context, id string) (*domain.Processamento, error) {
	query := `
		SELECT id, tipo, status, retry_count, max_retries, created_at
		FROM processamentos
		WHERE id = $1
	`

	var p domain.Processamento
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Tipo,
		&p.Status,
		&p.RetryCount,
		&p.MaxRetries,
		&p.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProcessamentoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get processamento: %w", err)
	}

	return &p, nil
}

// MarkConcluido stores the result payload and flips the record to concluido
// in one statement, so readers never observe a finished job without its
// result.
func (s *Storage) MarkConcluido(ctx context.Context, id string, resultado []byte, tempoMS int64) error {
	query := `
		UPDATE processamentos
		SET status = $2,
		    resultado = $3,
		    erro_mensagem = NULL,
		    tempo_processamento_ms = $4,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id, domain.StatusConcluido, resultado, tempoMS)
	if err != nil {
		return fmt.Errorf("failed to mark processamento as completed: %w", err)
	}

	s.logger.Info("Processamento completed",
		slog.String("id", id),
		slog.Int64("tempo_ms", tempoMS),
	)

	return nil
}

// MarkErro records the failure message and flips the record to erro
func (s *Storage) MarkErro(ctx context.Context, id, mensagem string, tempoMS int64) error {
	query := `
		UPDATE processamentos
		SET status = $2,
		    erro_mensagem = $3,
		    tempo_processamento_ms = $4,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id, domain.StatusErro, mensagem, tempoMS)
	if err != nil {
		return fmt.Errorf("failed to mark processamento as failed: %w", err)
	}

	s.logger.Info("Processamento failed",
		slog.String("id", id),
		slog.String("erro", mensagem),
	)

	return nil
}

// SetImagemURL records where the uploaded image landed in object storage
func (s *Storage) SetImagemURL(ctx context.Context, id, url string) error {
	query := `
		UPDATE processamentos
		SET imagem_url = $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("failed to set imagem_url: %w", err)
	}

	return nil
}

// MarkErroRetry records the attempt's failure and bumps the retry counter in
// one statement, so a reader during the retry window sees the erro state and
// the message that caused it. The counter lives in the database so the budget
// survives worker restarts and redeliveries to other workers.
func (s *Storage) MarkErroRetry(ctx context.Context, id, mensagem string, tempoMS int64) (int, error) {
	query := `
		UPDATE processamentos
		SET status = $2,
		    erro_mensagem = $3,
		    tempo_processamento_ms = $4,
		    retry_count = retry_count + 1,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING retry_count
	`

	var retryCount int
	err := s.db.QueryRowContext(ctx, query, id, domain.StatusErro, mensagem, tempoMS).Scan(&retryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrProcessamentoNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to record retry failure: %w", err)
	}

	s.logger.Info("Processamento failed, will retry",
		slog.String("id", id),
		slog.String("erro", mensagem),
		slog.Int("retry_count", retryCount),
	)

	return retryCount, nil
}
