package domain

// Processing kinds, also used as queue routing keys
const (
	TipoPlantas      = "plantas"
	TipoAnaliseFotos = "analise_fotos"
)

// Lifecycle states of a processamento record
const (
	StatusProcessando = "processando"
	StatusConcluido   = "concluido"
	StatusErro        = "erro"
)
