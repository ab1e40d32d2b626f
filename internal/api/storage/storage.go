package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trademkt/image-audit/internal/api/domain"
	"github.com/trademkt/image-audit/internal/api/model"
	"github.com/trademkt/image-audit/shared/postgresql"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

const processamentoColumns = `
	id, tipo, loja_id, nome_arquivo, imagem_url,
	status, resultado, erro_mensagem, tempo_processamento_ms,
	meta_dados, retry_count, max_retries, created_at, updated_at
`

func (s *Storage) Create(ctx context.Context, p *model.Processamento) error {
	query := `
		INSERT INTO processamentos (
			id, tipo, loja_id, nome_arquivo, imagem_url,
			status, resultado, erro_mensagem, tempo_processamento_ms,
			meta_dados, retry_count, max_retries, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		p.ID,
		p.Tipo,
		p.LojaID,
		p.NomeArquivo,
		p.ImagemURL,
		p.Status,
		p.Resultado,
		p.ErroMensagem,
		p.TempoProcessamentoMS,
		p.MetaDados,
		p.RetryCount,
		p.MaxRetries,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create processamento: %w", err)
	}

	return nil
}

// GetByID returns the processamento with the given id. When tipo is not
// empty, only a record of that kind matches, so kind-scoped endpoints cannot
// leak jobs of another kind.
func (s *Storage) GetByID(ctx context.Context, id, tipo string) (*model.Processamento, error) {
	var p model.Processamento
	query := `SELECT ` + processamentoColumns + ` FROM processamentos WHERE id = $1`
	args := []interface{}{id}

	if tipo != "" {
		query += " AND tipo = $2"
		args = append(args, tipo)
	}

	err := s.db.GetContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProcessamentoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get processamento: %w", err)
	}

	return &p, nil
}

// SetErro marks a record as failed before the worker ever saw it, used when
// enqueueing fails after the row was created.
func (s *Storage) SetErro(ctx context.Context, id, mensagem string) error {
	query := `
		UPDATE processamentos
		SET status = $2, erro_mensagem = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id, domain.StatusErro, mensagem)
	if err != nil {
		return fmt.Errorf("failed to mark processamento as failed: %w", err)
	}

	return nil
}

type Filter struct {
	Tipo   string
	LojaID string
	Status string
	Limit  int
}

func (s *Storage) List(ctx context.Context, filter Filter) ([]model.Processamento, error) {
	query := `SELECT ` + processamentoColumns + ` FROM processamentos WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Tipo != "" {
		query += fmt.Sprintf(" AND tipo = $%d", argIdx)
		args = append(args, filter.Tipo)
		argIdx++
	}

	if filter.LojaID != "" {
		query += fmt.Sprintf(" AND loja_id = $%d", argIdx)
		args = append(args, filter.LojaID)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	var out []model.Processamento
	err := s.db.SelectContext(ctx, &out, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list processamentos: %w", err)
	}

	return out, nil
}
