package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "imageaudit", cfg.Database.Database)
				assert.Equal(t, "image-audit", cfg.RabbitMQ.Exchange.Name)
				require.Len(t, cfg.RabbitMQ.Queues, 2)
				assert.Equal(t, "plantas", cfg.RabbitMQ.Queues[0].Name)
				assert.Equal(t, "analise_fotos", cfg.RabbitMQ.Queues[1].Name)
				assert.Equal(t, "gpt-4o", cfg.LLM.DefaultModel)
				assert.Equal(t, []string{"por", "eng"}, cfg.OCR.Languages)
				assert.Equal(t, 4*time.Minute, cfg.Worker.SoftTimeLimit)
				assert.Equal(t, 5*time.Minute, cfg.Worker.HardTimeLimit)
				assert.Equal(t, 3, cfg.Worker.MaxRetries)
				assert.Equal(t, 0.40, cfg.Worker.ConfidenceThreshold)
			}
		})
	}
}

func TestLoadReadsSecretsFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("GOOGLE_API_KEY", "gk-test")
	t.Setenv("API_KEY", "segredo")

	cfg, err := Load("testdata/valid_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.OpenAIAPIKey)
	assert.Equal(t, "ak-test", cfg.LLM.AnthropicAPIKey)
	assert.Equal(t, "gk-test", cfg.LLM.GoogleAPIKey)
	assert.Equal(t, "segredo", cfg.Auth.APIKey)
}

func validTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "imageaudit",
		},
		RabbitMQ: RabbitMQConfig{
			Host: "localhost",
			Port: 5672,
			Exchange: ExchangeConfig{
				Name: "image-audit",
			},
			Queues: []QueueConfig{
				{Name: "plantas", RoutingKey: "plantas"},
				{Name: "analise_fotos", RoutingKey: "analise_fotos"},
			},
		},
		Storage: StorageConfig{
			Endpoint: "localhost:9000",
		},
		Auth: AuthConfig{APIKey: "segredo"},
		Worker: WorkerConfig{
			Concurrency:         4,
			SoftTimeLimit:       4 * time.Minute,
			HardTimeLimit:       5 * time.Minute,
			MaxRetries:          3,
			ConfidenceThreshold: 0.40,
		},
	}
}

func TestValidateAPIConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:      "invalid server port",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "missing database host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			wantErr:   true,
			errString: "database host is required",
		},
		{
			name:      "missing exchange name",
			mutate:    func(c *Config) { c.RabbitMQ.Exchange.Name = "" },
			wantErr:   true,
			errString: "exchange name is required",
		},
		{
			name:      "no queues",
			mutate:    func(c *Config) { c.RabbitMQ.Queues = nil },
			wantErr:   true,
			errString: "at least one rabbitmq queue",
		},
		{
			name:      "queue without routing key",
			mutate:    func(c *Config) { c.RabbitMQ.Queues[0].RoutingKey = "" },
			wantErr:   true,
			errString: "routing_key",
		},
		{
			name:      "missing kind queue",
			mutate:    func(c *Config) { c.RabbitMQ.Queues = c.RabbitMQ.Queues[1:] },
			wantErr:   true,
			errString: `routing key "plantas"`,
		},
		{
			name:      "missing api key",
			mutate:    func(c *Config) { c.Auth.APIKey = "" },
			wantErr:   true,
			errString: "API_KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAPIConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateWorkerConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:      "zero concurrency",
			mutate:    func(c *Config) { c.Worker.Concurrency = 0 },
			wantErr:   true,
			errString: "concurrency",
		},
		{
			name:      "hard limit not above soft limit",
			mutate:    func(c *Config) { c.Worker.HardTimeLimit = c.Worker.SoftTimeLimit },
			wantErr:   true,
			errString: "hard_time_limit",
		},
		{
			name:      "negative max retries",
			mutate:    func(c *Config) { c.Worker.MaxRetries = -1 },
			wantErr:   true,
			errString: "max_retries",
		},
		{
			name:      "confidence threshold out of range",
			mutate:    func(c *Config) { c.Worker.ConfidenceThreshold = 1.5 },
			wantErr:   true,
			errString: "confidence_threshold",
		},
		{
			name:      "missing storage endpoint",
			mutate:    func(c *Config) { c.Storage.Endpoint = "" },
			wantErr:   true,
			errString: "storage endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.ValidateWorkerConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestQueueFor(t *testing.T) {
	cfg := validTestConfig()

	q, ok := cfg.RabbitMQ.QueueFor("analise_fotos")
	require.True(t, ok)
	assert.Equal(t, "analise_fotos", q.Name)

	_, ok = cfg.RabbitMQ.QueueFor("inexistente")
	assert.False(t, ok)
}
