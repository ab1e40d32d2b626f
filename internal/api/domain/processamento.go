package domain

import (
	"errors"
)

// Processing kinds. The kind doubles as the routing key of the queue the
// job is published to.
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

var (
	ErrProcessamentoNotFound = errors.New("processamento not found")
)
