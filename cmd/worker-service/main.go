package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/trademkt/image-audit/internal/config"
	"github.com/trademkt/image-audit/internal/fetcher"
	"github.com/trademkt/image-audit/internal/ocr"
	"github.com/trademkt/image-audit/internal/vision"
	"github.com/trademkt/image-audit/internal/worker"
	"github.com/trademkt/image-audit/shared/logger"
	"github.com/trademkt/image-audit/shared/objectstore"
	"github.com/trademkt/image-audit/shared/postgresql"
	"github.com/trademkt/image-audit/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("Database connection established")

	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}

	appLogger.Info("RabbitMQ connection established")

	objectStore, err := objectstore.NewClient(&objectstore.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
	}, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	queues := make([]string, len(cfg.RabbitMQ.Queues))
	for i, q := range cfg.RabbitMQ.Queues {
		queues[i] = q.Name
	}

	extractor := ocr.NewExtractor(ocr.NewTesseractEngine(cfg.OCR.Languages), appLogger.Logger)

	workerInstance := worker.NewWorker(&worker.Config{
		Logger:       appLogger.Logger,
		DBClient:     dbClient,
		RabbitClient: rabbitClient,
		ObjectStore:  objectStore,
		Fetcher:      fetcher.New(cfg.Worker.FetchTimeout),
		Extractor:    extractor,
		LLMConfig: vision.Config{
			OpenAIAPIKey:     cfg.LLM.OpenAIAPIKey,
			AnthropicAPIKey:  cfg.LLM.AnthropicAPIKey,
			GoogleAPIKey:     cfg.LLM.GoogleAPIKey,
			OpenAIBaseURL:    cfg.LLM.OpenAIBaseURL,
			AnthropicBaseURL: cfg.LLM.AnthropicBaseURL,
			GeminiBaseURL:    cfg.LLM.GeminiBaseURL,
			RequestTimeout:   cfg.LLM.RequestTimeout,
		},
		DefaultModel:        cfg.LLM.DefaultModel,
		BucketPlantas:       cfg.Storage.BucketPlantas,
		BucketAuditoria:     cfg.Storage.BucketAuditoria,
		Queues:              queues,
		PrefetchCount:       cfg.RabbitMQ.Consumer.PrefetchCount,
		Concurrency:         cfg.Worker.Concurrency,
		SoftTimeLimit:       cfg.Worker.SoftTimeLimit,
		HardTimeLimit:       cfg.Worker.HardTimeLimit,
		MaxRetries:          cfg.Worker.MaxRetries,
		RetryBaseDelay:      cfg.Worker.RetryBaseDelay,
		ConfidenceThreshold: cfg.Worker.ConfidenceThreshold,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := workerInstance.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	appLogger.Info("Worker service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Worker error",
			slog.Any("error", err),
		)
		return err
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	cleanup := func() {
		if dbClient != nil {
			dbClient.Close()
		}
		if rabbitClient != nil {
			rabbitClient.Close()
		}
	}
	cleanup()

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	queues := make([]rabbitmq.Queue, len(cfg.Queues))
	for i, q := range cfg.Queues {
		queues[i] = rabbitmq.Queue{
			Name:       q.Name,
			RoutingKey: q.RoutingKey,
			Durable:    q.Durable,
			AutoDelete: q.AutoDelete,
			Exclusive:  q.Exclusive,
		}
	}

	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		Queues:             queues,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}
