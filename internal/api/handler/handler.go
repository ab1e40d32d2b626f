package handler

import (
	"context"
	"log/slog"

	"github.com/trademkt/image-audit/internal/api/model"
	"github.com/trademkt/image-audit/internal/api/storage"
	"github.com/trademkt/image-audit/shared/postgresql"
	"github.com/trademkt/image-audit/shared/rabbitmq"
)

// Store is the slice of the persistence layer the handlers use
type Store interface {
	Create(ctx context.Context, p *model.Processamento) error
	GetByID(ctx context.Context, id, tipo string) (*model.Processamento, error)
	SetErro(ctx context.Context, id, mensagem string) error
	List(ctx context.Context, filter storage.Filter) ([]model.Processamento, error)
}

// Publisher sends queue messages under a routing key
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte, contentType string) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	DBClient     *postgresql.Client
	RabbitClient *rabbitmq.Client
	DefaultModel string
	MaxRetries   int
}

// ProcessamentoHandler handles image-processing HTTP requests
type ProcessamentoHandler struct {
	logger       *slog.Logger
	storage      Store
	publisher    Publisher
	defaultModel string
	maxRetries   int
}

// NewProcessamentoHandler creates a new ProcessamentoHandler instance
func NewProcessamentoHandler(deps *Dependencies) *ProcessamentoHandler {
	return &ProcessamentoHandler{
		logger:       deps.Logger,
		storage:      storage.NewStorage(deps.DBClient),
		publisher:    deps.RabbitClient,
		defaultModel: deps.DefaultModel,
		maxRetries:   deps.MaxRetries,
	}
}
