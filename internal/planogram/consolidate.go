package planogram

import (
	"encoding/json"
	"strconv"
)

// rawMapping mirrors the LLM's proposal payload before consolidation.
// Confidence is left untyped because models sometimes return it as a string.
type rawMapping struct {
	Enderecos []rawAddress `json:"enderecos"`
	Alertas   []string     `json:"alertas"`
}

type rawAddress struct {
	Codigo         string   `json:"codigo"`
	Nome           string   `json:"nome"`
	CategoriaID    *int     `json:"categoria_id"`
	TipoEnderecoID int      `json:"tipo_endereco_id"`
	Confidence     any      `json:"confidence"`
	XPct           float64  `json:"x_pct"`
	YPct           float64  `json:"y_pct"`
	Alertas        []string `json:"alertas"`
}

// consolidate applies the confidence gate to the raw proposals. Addresses at
// or above the threshold are accepted; the rest are counted and dropped
// without failing the run — address-level noise is expected and should
// degrade gracefully.
func consolidate(raw rawMapping, threshold float64) *MappingResult {
	result := &MappingResult{
		Enderecos: []Address{},
		Alertas:   raw.Alertas,
	}
	if result.Alertas == nil {
		result.Alertas = []string{}
	}

	result.Relatorio.QuantidadeDetectada = len(raw.Enderecos)
	for _, end := range raw.Enderecos {
		confidence := coerceConfidence(end.Confidence)
		if confidence < threshold {
			result.Relatorio.QuantidadeDescartada++
			continue
		}

		result.Relatorio.QuantidadeCadastravel++
		alertas := end.Alertas
		if alertas == nil {
			alertas = []string{}
		}
		result.Enderecos = append(result.Enderecos, Address{
			Codigo:         end.Codigo,
			Nome:           end.Nome,
			CategoriaID:    end.CategoriaID,
			TipoEnderecoID: end.TipoEnderecoID,
			Confidence:     confidence,
			XPct:           end.XPct,
			YPct:           end.YPct,
			Alertas:        alertas,
		})
	}

	return result
}

// coerceConfidence forces the model's confidence into a float. String values
// are parsed; unparsable strings fall back to 0.5 rather than aborting the
// whole mapping. Anything else counts as zero confidence.
func coerceConfidence(v any) float64 {
	switch c := v.(type) {
	case float64:
		return c
	case json.Number:
		f, err := c.Float64()
		if err != nil {
			return 0.5
		}
		return f
	case string:
		f, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return 0.5
		}
		return f
	default:
		return 0.0
	}
}
