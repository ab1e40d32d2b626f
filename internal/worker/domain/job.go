package domain

import "time"

// Processamento is the worker's view of a job record
type Processamento struct {
	ID         string
	Tipo       string
	Status     string
	RetryCount int
	MaxRetries int
	CreatedAt  time.Time
}

// JobMessage is one RabbitMQ delivery handed to the worker pool. Tipo comes
// from the routing key and selects the pipeline; Body still holds the raw
// JSON arguments.
type JobMessage struct {
	JobID       string
	Tipo        string
	Body        []byte
	DeliveryTag uint64
}

// AuditArgs are the queue arguments of a point-of-sale audit job
type AuditArgs struct {
	JobID     string `json:"job_id"`
	ImagemURL string `json:"imagem_url"`
	ModeloLLM string `json:"modelo_llm"`
}

// PlantasArgs are the queue arguments of a floor-plan mapping job
type PlantasArgs struct {
	JobID        string `json:"job_id"`
	ImagemBase64 string `json:"imagem_base64"`
	NomeArquivo  string `json:"nome_arquivo"`
	LojaID       string `json:"loja_id"`
	ModeloLLM    string `json:"modelo_llm"`
}
