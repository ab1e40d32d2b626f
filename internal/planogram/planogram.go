// Package planogram maps storage addresses out of floor-plan scans. OCR
// evidence grounds a vision-LLM pass, and a confidence gate decides which of
// the proposed addresses are trustworthy enough to register downstream.
package planogram

// DefaultConfidenceThreshold is the policy cutoff for accepting a proposed
// address. It is a tunable business constant, not a physical law.
const DefaultConfidenceThreshold = 0.40

// Address is one storage location proposed by the LLM fusion step and
// accepted by consolidation. Never mutated afterwards.
type Address struct {
	Codigo         string   `json:"codigo"`
	Nome           string   `json:"nome"`
	CategoriaID    *int     `json:"categoria_id"`
	TipoEnderecoID int      `json:"tipo_endereco_id"`
	Confidence     float64  `json:"confidence"`
	XPct           float64  `json:"x_pct"`
	YPct           float64  `json:"y_pct"`
	Alertas        []string `json:"alertas"`
}

// Report is the statistical rollup of one consolidation pass. The counts
// always satisfy detectada == cadastravel + descartada.
type Report struct {
	QuantidadeDetectada   int `json:"quantidade_detectada"`
	QuantidadeCadastravel int `json:"quantidade_cadastravel"`
	QuantidadeDescartada  int `json:"quantidade_descartada"`
}

// MappingResult is the consolidated output of one address-mapping run
type MappingResult struct {
	Enderecos []Address `json:"enderecos"`
	Alertas   []string  `json:"alertas"`
	Relatorio Report    `json:"relatorio"`
}
