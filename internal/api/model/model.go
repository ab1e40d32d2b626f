package model

import "time"

// Processamento is one image-processing job as stored in Postgres. Resultado
// and MetaDados hold JSON documents; the nullable columns are pointers so a
// fresh job round-trips without fake zero values.
type Processamento struct {
	ID                   string    `db:"id"`
	Tipo                 string    `db:"tipo"`
	LojaID               *string   `db:"loja_id"`
	NomeArquivo          *string   `db:"nome_arquivo"`
	ImagemURL            *string   `db:"imagem_url"`
	Status               string    `db:"status"`
	Resultado            *string   `db:"resultado"`
	ErroMensagem         *string   `db:"erro_mensagem"`
	TempoProcessamentoMS *int64    `db:"tempo_processamento_ms"`
	MetaDados            *string   `db:"meta_dados"`
	RetryCount           int       `db:"retry_count"`
	MaxRetries           int       `db:"max_retries"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}
