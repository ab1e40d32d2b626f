package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trademkt/image-audit/internal/api/domain"
	"github.com/trademkt/image-audit/internal/api/dto"
	"github.com/trademkt/image-audit/internal/api/model"
	"github.com/trademkt/image-audit/internal/api/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// publish serializes the queue message and publishes it under the kind's
// routing key. On failure the record is marked as failed and the HTTP error
// is written; callers just return when an error comes back.
func (h *ProcessamentoHandler) publish(c *gin.Context, routingKey string, msg interface{}, id string) error {
	body, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal queue message", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Falha ao enfileirar processamento",
		})
		return err
	}

	if err := h.publisher.Publish(c.Request.Context(), routingKey, body, "application/json"); err != nil {
		h.logger.Error("Failed to publish queue message",
			slog.String("id", id),
			slog.String("routing_key", routingKey),
			slog.String("error", err.Error()),
		)

		if markErr := h.storage.SetErro(c.Request.Context(), id, "Falha ao enfileirar processamento"); markErr != nil {
			h.logger.Error("Failed to mark processamento as failed",
				slog.String("id", id),
				slog.String("error", markErr.Error()),
			)
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Falha ao enfileirar processamento",
		})
		return err
	}

	return nil
}

// ListProcessamentos handles GET /api/v1/processamentos
// Admin listing across both job kinds with optional filters.
func (h *ProcessamentoHandler) ListProcessamentos(c *gin.Context) {
	var req dto.ListProcessamentosRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "parâmetros de consulta inválidos",
		})
		return
	}

	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	if req.Limit > maxListLimit {
		req.Limit = maxListLimit
	}

	items, err := h.storage.List(c.Request.Context(), storage.Filter{
		Tipo:   req.Tipo,
		LojaID: req.LojaID,
		Status: req.Status,
		Limit:  req.Limit,
	})
	if err != nil {
		h.logger.Error("Failed to list processamentos", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Falha ao listar processamentos",
		})
		return
	}

	out := make([]dto.ProcessamentoDTO, len(items))
	for i := range items {
		out[i] = toProcessamentoDTO(&items[i])
	}

	c.JSON(http.StatusOK, dto.ListProcessamentosResponse{
		Processamentos: out,
	})
}

// GetProcessamento handles GET /api/v1/processamentos/:id
func (h *ProcessamentoHandler) GetProcessamento(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id deve ser um UUID válido",
		})
		return
	}

	p, err := h.storage.GetByID(c.Request.Context(), id, "")
	if errors.Is(err, domain.ErrProcessamentoNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Processamento não encontrado",
		})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get processamento", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Falha ao consultar processamento",
		})
		return
	}

	c.JSON(http.StatusOK, toProcessamentoDTO(p))
}

func toProcessamentoDTO(p *model.Processamento) dto.ProcessamentoDTO {
	out := dto.ProcessamentoDTO{
		ID:                   p.ID,
		Tipo:                 p.Tipo,
		LojaID:               p.LojaID,
		NomeArquivo:          p.NomeArquivo,
		ImagemURL:            p.ImagemURL,
		Status:               p.Status,
		ErroMensagem:         p.ErroMensagem,
		TempoProcessamentoMS: p.TempoProcessamentoMS,
		RetryCount:           p.RetryCount,
		MaxRetries:           p.MaxRetries,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            p.UpdatedAt.Format(time.RFC3339),
	}

	if p.Resultado != nil {
		out.Resultado = json.RawMessage(*p.Resultado)
	}

	return out
}
