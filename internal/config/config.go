package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Storage  StorageConfig  `yaml:"storage"`
	LLM      LLMConfig      `yaml:"llm"`
	OCR      OCRConfig      `yaml:"ocr"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// RabbitMQConfig holds RabbitMQ connection and exchange/queue configuration.
// One queue per audit kind so the kinds scale independently.
type RabbitMQConfig struct {
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	User       string           `yaml:"user"`
	Password   string           `yaml:"password"`
	VHost      string           `yaml:"vhost"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Queues     []QueueConfig    `yaml:"queues"`
	Connection ConnectionConfig `yaml:"connection"`
	Publish    PublishConfig    `yaml:"publish"`
	Consumer   ConsumerConfig   `yaml:"consumer"`
}

// ExchangeConfig holds RabbitMQ exchange configuration
type ExchangeConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
}

// QueueConfig holds one kind queue's configuration
type QueueConfig struct {
	Name       string `yaml:"name"`
	RoutingKey string `yaml:"routing_key"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
	Exclusive  bool   `yaml:"exclusive"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	Heartbeat         time.Duration `yaml:"heartbeat"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// PublishConfig holds RabbitMQ publish retry settings
type PublishConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// ConsumerConfig holds RabbitMQ consumer settings
type ConsumerConfig struct {
	PrefetchCount int `yaml:"prefetch_count"`
}

// StorageConfig holds MinIO/S3 object storage configuration
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKey       string `yaml:"access_key"`
	SecretKey       string `yaml:"secret_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	BucketPlantas   string `yaml:"bucket_plantas"`
	BucketAuditoria string `yaml:"bucket_auditoria"`
}

// LLMConfig holds vision-LLM backend credentials and defaults. API keys come
// from the environment, never from the YAML file.
type LLMConfig struct {
	DefaultModel     string        `yaml:"default_model"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	OpenAIBaseURL    string        `yaml:"openai_base_url"`
	AnthropicBaseURL string        `yaml:"anthropic_base_url"`
	GeminiBaseURL    string        `yaml:"gemini_base_url"`
	OpenAIAPIKey     string        `yaml:"-"`
	AnthropicAPIKey  string        `yaml:"-"`
	GoogleAPIKey     string        `yaml:"-"`
}

// OCRConfig holds text-detection engine settings
type OCRConfig struct {
	Languages []string `yaml:"languages"`
}

// AuthConfig holds API authentication settings. The key itself comes from the
// environment.
type AuthConfig struct {
	APIKey string `yaml:"-"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// WorkerConfig holds worker service configuration. ConfidenceThreshold gates
// which proposed floor-plan addresses are kept; zero means the built-in
// default.
type WorkerConfig struct {
	Concurrency         int           `yaml:"concurrency"`
	SoftTimeLimit       time.Duration `yaml:"soft_time_limit"`
	HardTimeLimit       time.Duration `yaml:"hard_time_limit"`
	MaxRetries          int           `yaml:"max_retries"`
	RetryBaseDelay      time.Duration `yaml:"retry_base_delay"`
	FetchTimeout        time.Duration `yaml:"fetch_timeout"`
	ShutdownTimeout     time.Duration `yaml:"shutdown_timeout"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
}

// Load reads and parses the configuration file, then overlays secrets from
// the environment.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.LLM.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	config.LLM.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	config.LLM.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	config.Auth.APIKey = os.Getenv("API_KEY")

	return &config, nil
}

// ValidateAPIConfig checks the configuration required by the API service
func (c *Config) ValidateAPIConfig() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if err := c.validateShared(); err != nil {
		return err
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API_KEY environment variable is required")
	}

	return nil
}

// ValidateWorkerConfig checks the configuration required by the worker service
func (c *Config) ValidateWorkerConfig() error {
	if err := c.validateShared(); err != nil {
		return err
	}

	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker concurrency must be greater than 0")
	}

	if c.Worker.SoftTimeLimit <= 0 {
		return fmt.Errorf("worker soft_time_limit must be greater than 0")
	}

	if c.Worker.HardTimeLimit <= c.Worker.SoftTimeLimit {
		return fmt.Errorf("worker hard_time_limit must be greater than soft_time_limit")
	}

	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("worker max_retries must not be negative")
	}

	if c.Worker.ConfidenceThreshold < 0 || c.Worker.ConfidenceThreshold > 1 {
		return fmt.Errorf("worker confidence_threshold must be between 0 and 1")
	}

	if c.Storage.Endpoint == "" {
		return fmt.Errorf("storage endpoint is required")
	}

	return nil
}

func (c *Config) validateShared() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < MinPort || c.Database.Port > MaxPort {
		return fmt.Errorf("invalid database port: %d (must be between %d and %d)", c.Database.Port, MinPort, MaxPort)
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.RabbitMQ.Host == "" {
		return fmt.Errorf("rabbitmq host is required")
	}

	if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
		return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
	}

	if c.RabbitMQ.Exchange.Name == "" {
		return fmt.Errorf("rabbitmq exchange name is required")
	}

	if len(c.RabbitMQ.Queues) == 0 {
		return fmt.Errorf("at least one rabbitmq queue is required")
	}

	for _, q := range c.RabbitMQ.Queues {
		if q.Name == "" || q.RoutingKey == "" {
			return fmt.Errorf("rabbitmq queue name and routing_key are required")
		}
	}

	// Both job kinds need a bound queue or their submissions have nowhere
	// to go
	for _, rk := range []string{"plantas", "analise_fotos"} {
		if _, ok := c.RabbitMQ.QueueFor(rk); !ok {
			return fmt.Errorf("rabbitmq queue for routing key %q is required", rk)
		}
	}

	return nil
}

// QueueFor returns the queue configured for the given routing key, or false
// when no queue is bound to it.
func (c *RabbitMQConfig) QueueFor(routingKey string) (QueueConfig, bool) {
	for _, q := range c.Queues {
		if q.RoutingKey == routingKey {
			return q, true
		}
	}
	return QueueConfig{}, false
}
