package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trademkt/image-audit/internal/api/domain"
	"github.com/trademkt/image-audit/internal/api/dto"
	"github.com/trademkt/image-audit/internal/api/model"
)

// plantaStatusMap translates the stored lifecycle state to the upper-case
// vocabulary of the V2 floor-plan endpoint.
var plantaStatusMap = map[string]string{
	domain.StatusProcessando: "PROCESSANDO",
	domain.StatusConcluido:   "SUCESSO",
	domain.StatusErro:        "ERRO",
}

// ProcessarPlanta handles POST /api/v1/plantas/processar
// Accepts a floor plan upload and enqueues the address-mapping job. The
// image travels to the worker inside the queue message.
func (h *ProcessamentoHandler) ProcessarPlanta(c *gin.Context) {
	fileHeader, err := c.FormFile("imagem")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "arquivo 'imagem' é obrigatório",
		})
		return
	}

	lojaID := c.PostForm("loja_id")
	if lojaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "loja_id é obrigatório",
		})
		return
	}

	modelo := c.PostForm("modelo_llm")
	if modelo == "" {
		modelo = h.defaultModel
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "não foi possível ler o arquivo enviado",
		})
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "não foi possível ler o arquivo enviado",
		})
		return
	}

	meta := metaDados(map[string]string{
		"loja_id":    lojaID,
		"modelo_llm": modelo,
	})

	now := time.Now()
	nomeArquivo := fileHeader.Filename
	p := model.Processamento{
		ID:          uuid.New().String(),
		Tipo:        domain.TipoPlantas,
		LojaID:      &lojaID,
		NomeArquivo: &nomeArquivo,
		Status:      domain.StatusProcessando,
		MetaDados:   meta,
		MaxRetries:  h.maxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.storage.Create(c.Request.Context(), &p); err != nil {
		h.logger.Error("Failed to create processamento", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Falha ao registrar processamento",
		})
		return
	}

	msg := dto.PlantasMessage{
		JobID:        p.ID,
		ImagemBase64: base64.StdEncoding.EncodeToString(imageBytes),
		NomeArquivo:  nomeArquivo,
		LojaID:       lojaID,
		ModeloLLM:    modelo,
	}
	if err := h.publish(c, domain.TipoPlantas, msg, p.ID); err != nil {
		return
	}

	h.logger.Info("Floor plan job enqueued",
		slog.String("id", p.ID),
		slog.String("loja_id", lojaID),
		slog.String("nome_arquivo", nomeArquivo),
		slog.Int("image_size", len(imageBytes)),
	)

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{
		ID:       p.ID,
		Status:   p.Status,
		Mensagem: "Planta em processamento",
	})
}

// GetPlanta handles GET /api/v1/plantas/processamentos/:id
// Returns the V2 mapping result view.
func (h *ProcessamentoHandler) GetPlanta(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id deve ser um UUID válido",
		})
		return
	}

	p, err := h.storage.GetByID(c.Request.Context(), id, domain.TipoPlantas)
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

	resp := dto.PlantaStatusResponse{
		ID:                   p.ID,
		Status:               plantaStatusMap[p.Status],
		TempoProcessamentoMS: p.TempoProcessamentoMS,
	}

	switch p.Status {
	case domain.StatusConcluido:
		if p.Resultado != nil {
			var resultado struct {
				Plantas json.RawMessage `json:"plantas"`
			}
			if err := json.Unmarshal([]byte(*p.Resultado), &resultado); err != nil {
				h.logger.Error("Stored resultado is not valid JSON",
					slog.String("id", p.ID),
					slog.String("error", err.Error()),
				)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Resultado armazenado é inválido",
				})
				return
			}
			resp.Dados = resultado.Plantas
		}
	case domain.StatusErro:
		resp.Erro = p.ErroMensagem
	}

	c.JSON(http.StatusOK, resp)
}
