package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trademkt/image-audit/internal/api/domain"
	"github.com/trademkt/image-audit/internal/api/dto"
	"github.com/trademkt/image-audit/internal/api/model"
)

// AuditarPDV handles POST /api/v1/analise-fotos/auditar-pdv
// Registers a point-of-sale audit job and enqueues it for the worker.
func (h *ProcessamentoHandler) AuditarPDV(c *gin.Context) {
	var req dto.AuditarPDVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "imagem_url é obrigatória",
		})
		return
	}

	modelo := req.ModeloLLM
	if modelo == "" {
		modelo = h.defaultModel
	}

	meta := metaDados(map[string]string{
		"tipo_analise": "auditoria_pdv",
		"modelo_llm":   modelo,
	})

	now := time.Now()
	nomeArquivo := nomeArquivoFromURL(req.ImagemURL)
	p := model.Processamento{
		ID:          uuid.New().String(),
		Tipo:        domain.TipoAnaliseFotos,
		NomeArquivo: &nomeArquivo,
		ImagemURL:   &req.ImagemURL,
		Status:      domain.StatusProcessando,
		MetaDados:   meta,
		MaxRetries:  h.maxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.storage.Create(c.Request.Context(), &p); err != nil {
		h.logger.Error("Failed to create processamento", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Falha ao registrar auditoria",
		})
		return
	}

	msg := dto.AuditMessage{
		JobID:     p.ID,
		ImagemURL: req.ImagemURL,
		ModeloLLM: modelo,
	}
	if err := h.publish(c, domain.TipoAnaliseFotos, msg, p.ID); err != nil {
		return
	}

	h.logger.Info("Audit job enqueued",
		slog.String("id", p.ID),
		slog.String("modelo_llm", modelo),
	)

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{
		ID:       p.ID,
		Status:   p.Status,
		Mensagem: "Auditoria em processamento",
	})
}

// GetAuditoria handles GET /api/v1/analise-fotos/auditorias/:id
// Returns the finished audit in the n8n list shape, or the job status while
// it is still running.
func (h *ProcessamentoHandler) GetAuditoria(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id deve ser um UUID válido",
		})
		return
	}

	p, err := h.storage.GetByID(c.Request.Context(), id, domain.TipoAnaliseFotos)
	if errors.Is(err, domain.ErrProcessamentoNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Auditoria não encontrada",
		})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get processamento", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Falha ao consultar auditoria",
		})
		return
	}

	if p.Status != domain.StatusConcluido || p.Resultado == nil {
		c.JSON(http.StatusOK, dto.AuditStatusResponse{
			ID:           p.ID,
			Status:       p.Status,
			ErroMensagem: p.ErroMensagem,
		})
		return
	}

	// The n8n consumer expects the audit verdict's fields directly under
	// "output", without the result envelope around them
	var stored struct {
		Auditoria json.RawMessage `json:"auditoria"`
	}
	if err := json.Unmarshal([]byte(*p.Resultado), &stored); err != nil {
		h.logger.Error("Stored resultado is not valid JSON",
			slog.String("id", p.ID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Resultado armazenado é inválido",
		})
		return
	}

	output := stored.Auditoria
	if len(output) == 0 {
		output = json.RawMessage(*p.Resultado)
	}

	c.JSON(http.StatusOK, []gin.H{
		{"output": output},
	})
}

// metaDados serializes the submission metadata for the jsonb column
func metaDados(meta map[string]string) *string {
	encoded, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	s := string(encoded)
	return &s
}

// nomeArquivoFromURL derives the stored file name from the source URL
func nomeArquivoFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || path.Base(parsed.Path) == "/" || path.Base(parsed.Path) == "." {
		return "imagem.jpg"
	}
	return path.Base(parsed.Path)
}
