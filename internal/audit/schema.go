package audit

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// auditSchemaJSON constrains the value domains of the audit verdict. Required
// keys are checked separately so the incomplete-result error can enumerate
// exactly what is missing.
const auditSchemaJSON = `{
	"type": "object",
	"properties": {
		"nota":                {"type": "integer", "minimum": 0, "maximum": 10},
		"nota_posicionamento": {"type": "integer", "minimum": 0, "maximum": 10},
		"nota_visibilidade":   {"type": "integer", "minimum": 0, "maximum": 10},
		"nota_integridade":    {"type": "integer", "minimum": 0, "maximum": 10},
		"nota_conteudo":       {"type": "integer", "minimum": 0, "maximum": 10},
		"status":              {"enum": ["aprovado", "aprovado_com_ressalvas", "reprovado"]},
		"tipo_ativo":          {"type": "string"},
		"marca":               {"type": ["string", "null"]},
		"visualizacao_ok":     {"type": "boolean"},
		"parecer":             {"type": "string"},
		"problemas":             {"type": "array", "items": {"type": "string"}},
		"penalidades_aplicadas": {"type": "array", "items": {"type": "string"}},
		"criterio_eliminatorio": {"type": ["string", "null"]},
		"recomendacao":          {"type": "string"},
		"preço":                 {"type": ["string", "null"]},
		"confianca_avaliacao":   {"enum": ["alta", "media", "baixa"]},
		"limitacoes_foto":       {"type": "array", "items": {"type": "string"}}
	}
}`

var auditSchema = mustCompileSchema("audit-result.json", auditSchemaJSON)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}
