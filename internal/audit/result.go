// Package audit implements the promotional-asset audit: a vision-LLM pass
// over a point-of-sale photo producing a scored, all-or-nothing verdict.
package audit

import "fmt"

// Audit status values the model may return
const (
	StatusAprovado             = "aprovado"
	StatusAprovadoComRessalvas = "aprovado_com_ressalvas"
	StatusReprovado            = "reprovado"
)

// Assessment confidence categories
const (
	ConfiancaAlta  = "alta"
	ConfiancaMedia = "media"
	ConfiancaBaixa = "baixa"
)

// Result is the structured audit verdict. Every field is mandatory in the raw
// LLM response; a partial result is rejected rather than defaulted, since the
// audit is the billable unit of work.
type Result struct {
	Nota                 int      `json:"nota"`
	NotaPosicionamento   int      `json:"nota_posicionamento"`
	NotaVisibilidade     int      `json:"nota_visibilidade"`
	NotaIntegridade      int      `json:"nota_integridade"`
	NotaConteudo         int      `json:"nota_conteudo"`
	Status               string   `json:"status"`
	TipoAtivo            string   `json:"tipo_ativo"`
	Marca                *string  `json:"marca"`
	VisualizacaoOK       bool     `json:"visualizacao_ok"`
	Parecer              string   `json:"parecer"`
	Problemas            []string `json:"problemas"`
	PenalidadesAplicadas []string `json:"penalidades_aplicadas"`
	CriterioEliminatorio *string  `json:"criterio_eliminatorio"`
	Recomendacao         string   `json:"recomendacao"`
	Preco                *string  `json:"preço"`
	ConfiancaAvaliacao   string   `json:"confianca_avaliacao"`
	LimitacoesFoto       []string `json:"limitacoes_foto"`
}

// mandatoryKeys lists every key the raw response must carry
var mandatoryKeys = []string{
	"nota", "nota_posicionamento", "nota_visibilidade",
	"nota_integridade", "nota_conteudo", "status",
	"tipo_ativo", "marca", "visualizacao_ok", "parecer",
	"problemas", "penalidades_aplicadas", "criterio_eliminatorio",
	"recomendacao", "preço", "confianca_avaliacao", "limitacoes_foto",
}

// IncompleteAuditError reports a raw response missing mandatory keys
type IncompleteAuditError struct {
	MissingKeys []string
}

func (e *IncompleteAuditError) Error() string {
	return fmt.Sprintf("resultado de auditoria incompleto, chaves faltantes: %v", e.MissingKeys)
}

// InvalidAuditValueError reports a mandatory key carrying a value outside its
// allowed domain.
type InvalidAuditValueError struct {
	Detail string
}

func (e *InvalidAuditValueError) Error() string {
	return "valor inválido no resultado de auditoria: " + e.Detail
}
