package dto

import "encoding/json"

// AuditarPDVRequest is the body of POST /api/v1/analise-fotos/auditar-pdv
type AuditarPDVRequest struct {
	ImagemURL string `json:"imagem_url" binding:"required"`
	ModeloLLM string `json:"modelo_llm"`
}

// AcceptedResponse is the 202 envelope returned when a job is enqueued
type AcceptedResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Mensagem string `json:"mensagem"`
}

// AuditStatusResponse reports a still-running or failed audit
type AuditStatusResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	ErroMensagem *string `json:"erro_mensagem,omitempty"`
}

// PlantaStatusResponse is the V2 floor-plan result shape. Status uses the
// upper-case vocabulary (PROCESSANDO, SUCESSO, ERRO) expected by the
// registration frontend.
type PlantaStatusResponse struct {
	ID                   string          `json:"id"`
	Status               string          `json:"status"`
	Dados                json.RawMessage `json:"dados,omitempty"`
	Erro                 *string         `json:"erro,omitempty"`
	TempoProcessamentoMS *int64          `json:"tempo_processamento_ms,omitempty"`
}

// ProcessamentoDTO is the generic admin view of a job record
type ProcessamentoDTO struct {
	ID                   string          `json:"id"`
	Tipo                 string          `json:"tipo"`
	LojaID               *string         `json:"loja_id,omitempty"`
	NomeArquivo          *string         `json:"nome_arquivo,omitempty"`
	ImagemURL            *string         `json:"imagem_url,omitempty"`
	Status               string          `json:"status"`
	Resultado            json.RawMessage `json:"resultado,omitempty"`
	ErroMensagem         *string         `json:"erro_mensagem,omitempty"`
	TempoProcessamentoMS *int64          `json:"tempo_processamento_ms,omitempty"`
	RetryCount           int             `json:"retry_count"`
	MaxRetries           int             `json:"max_retries"`
	CreatedAt            string          `json:"created_at"`
	UpdatedAt            string          `json:"updated_at"`
}

// ListProcessamentosRequest carries the list filters
type ListProcessamentosRequest struct {
	Tipo   string `form:"tipo"`
	LojaID string `form:"loja_id"`
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}

// ListProcessamentosResponse wraps the admin listing
type ListProcessamentosResponse struct {
	Processamentos []ProcessamentoDTO `json:"processamentos"`
}

// AuditMessage is the queue payload of an audit job. It carries the full job
// arguments so a redelivered message restarts the pipeline without a
// database read.
type AuditMessage struct {
	JobID     string `json:"job_id"`
	ImagemURL string `json:"imagem_url"`
	ModeloLLM string `json:"modelo_llm"`
}

// PlantasMessage is the queue payload of a floor-plan job. The image rides
// inline as base64 because the upload has not been persisted anywhere the
// worker could fetch it from yet.
type PlantasMessage struct {
	JobID        string `json:"job_id"`
	ImagemBase64 string `json:"imagem_base64"`
	NomeArquivo  string `json:"nome_arquivo"`
	LojaID       string `json:"loja_id"`
	ModeloLLM    string `json:"modelo_llm"`
}
