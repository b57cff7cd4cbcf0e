package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	domainconfig "paperindex/domain/config"
	"paperindex/pkg/utils"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development test staging production"`

	// Storage backend: dynamodb, or memory for local runs
	StoreBackend string `yaml:"store_backend" validate:"oneof=dynamodb memory"`

	// AWS configuration
	AWSRegion        string `yaml:"aws_region" validate:"required"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint" validate:"omitempty,url"`
	TableName        string `yaml:"table_name" validate:"required"`
	AuthorIndexName  string `yaml:"author_index_name" validate:"required"`
	PaperIDIndexName string `yaml:"paper_id_index_name" validate:"required"`
	KeywordIndexName string `yaml:"keyword_index_name" validate:"required"`
	EventBusName     string `yaml:"event_bus_name"`
	MetricsNamespace string `yaml:"metrics_namespace" validate:"required"`

	// Lambda configuration
	IsLambda           bool   `yaml:"is_lambda"`
	LambdaFunctionName string `yaml:"lambda_function_name"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`
	EnableEvents  bool `yaml:"enable_events"`

	// Queries
	QueryTimeout time.Duration `yaml:"query_timeout" validate:"gte=0"`

	// Keyword extraction
	StopwordsFile string `yaml:"stopwords_file"`

	Domain  DomainSettings  `yaml:"domain"`
	Breaker BreakerSettings `yaml:"breaker"`
}

// DomainSettings mirrors the domain rules so they can be set from a file.
type DomainSettings struct {
	KeywordTopK       int           `yaml:"keyword_top_k" validate:"gte=0"`
	StopwordSet       string        `yaml:"stopword_set" validate:"required"`
	BatchSize         int           `yaml:"batch_size" validate:"min=1,max=25"`
	LoadWorkers       int           `yaml:"load_workers" validate:"min=1"`
	MaxRetries        int           `yaml:"max_retries" validate:"gte=0"`
	RetryBaseDelay    time.Duration `yaml:"retry_base_delay" validate:"gte=0"`
	DefaultQueryLimit int           `yaml:"default_query_limit" validate:"min=1"`
	MaxQueryLimit     int           `yaml:"max_query_limit" validate:"min=1"`
}

// BreakerSettings configures the circuit breaker in front of the store.
type BreakerSettings struct {
	Enabled      bool          `yaml:"enabled"`
	MaxRequests  uint32        `yaml:"max_requests" validate:"min=1"`
	Interval     time.Duration `yaml:"interval" validate:"gte=0"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	MinRequests  uint32        `yaml:"min_requests"`
	FailureRatio float64       `yaml:"failure_ratio" validate:"gt=0,lte=1"`
}

// LoadConfig loads configuration from defaults, then the YAML file named by
// CONFIG_FILE if set, then environment variables.
func LoadConfig() (*Config, error) {
	cfg := Defaults(getEnv("ENVIRONMENT", "development"))

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()
		if err := cfg.ApplyYAML(f); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults(environment string) *Config {
	domain := domainconfig.LoadDomainConfig(environment)
	return &Config{
		ServerAddress:    ":8080",
		Environment:      environment,
		StoreBackend:     "dynamodb",
		AWSRegion:        "us-east-1",
		TableName:        "arxiv-papers",
		AuthorIndexName:  "AuthorIndex",
		PaperIDIndexName: "PaperIdIndex",
		KeywordIndexName: "KeywordIndex",
		EventBusName:     "default",
		MetricsNamespace: "PaperIndex",
		LogLevel:         "info",
		EnableCORS:       true,
		QueryTimeout:     10 * time.Second,
		Domain: DomainSettings{
			KeywordTopK:       domain.KeywordTopK,
			StopwordSet:       domain.StopwordSet,
			BatchSize:         domain.BatchSize,
			LoadWorkers:       domain.LoadWorkers,
			MaxRetries:        domain.MaxRetries,
			RetryBaseDelay:    domain.RetryBaseDelay,
			DefaultQueryLimit: domain.DefaultQueryLimit,
			MaxQueryLimit:     domain.MaxQueryLimit,
		},
		Breaker: BreakerSettings{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     10 * time.Second,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
		},
	}
}

// ApplyYAML overlays the fields present in a YAML document.
func (c *Config) ApplyYAML(r io.Reader) error {
	if err := yaml.NewDecoder(r).Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ApplyEnv overlays every environment variable that is set.
func (c *Config) ApplyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoDBEndpoint)
	c.TableName = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.TableName))
	c.AuthorIndexName = getEnv("AUTHOR_INDEX_NAME", c.AuthorIndexName)
	c.PaperIDIndexName = getEnv("PAPER_ID_INDEX_NAME", c.PaperIDIndexName)
	c.KeywordIndexName = getEnv("KEYWORD_INDEX_NAME", c.KeywordIndexName)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)

	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda)
	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", c.LambdaFunctionName)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.EnableEvents = getEnvBool("ENABLE_EVENTS", c.EnableEvents)

	c.QueryTimeout = getEnvDuration("QUERY_TIMEOUT", c.QueryTimeout)
	c.StopwordsFile = getEnv("STOPWORDS_FILE", c.StopwordsFile)

	c.Domain.KeywordTopK = getEnvInt("KEYWORD_TOP_K", c.Domain.KeywordTopK)
	c.Domain.StopwordSet = getEnv("STOPWORD_SET", c.Domain.StopwordSet)
	c.Domain.BatchSize = getEnvInt("LOAD_BATCH_SIZE", c.Domain.BatchSize)
	c.Domain.LoadWorkers = getEnvInt("LOAD_WORKERS", c.Domain.LoadWorkers)
	c.Domain.MaxRetries = getEnvInt("LOAD_MAX_RETRIES", c.Domain.MaxRetries)
	c.Domain.RetryBaseDelay = getEnvDuration("LOAD_RETRY_BASE_DELAY", c.Domain.RetryBaseDelay)
	c.Domain.DefaultQueryLimit = getEnvInt("QUERY_DEFAULT_LIMIT", c.Domain.DefaultQueryLimit)
	c.Domain.MaxQueryLimit = getEnvInt("QUERY_MAX_LIMIT", c.Domain.MaxQueryLimit)

	c.Breaker.Enabled = getEnvBool("BREAKER_ENABLED", c.Breaker.Enabled)
	c.Breaker.MaxRequests = getEnvUint32("BREAKER_MAX_REQUESTS", c.Breaker.MaxRequests)
	c.Breaker.Interval = getEnvDuration("BREAKER_INTERVAL", c.Breaker.Interval)
	c.Breaker.Timeout = getEnvDuration("BREAKER_TIMEOUT", c.Breaker.Timeout)
	c.Breaker.MinRequests = getEnvUint32("BREAKER_MIN_REQUESTS", c.Breaker.MinRequests)
	c.Breaker.FailureRatio = getEnvFloat("BREAKER_FAILURE_RATIO", c.Breaker.FailureRatio)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.DomainConfig().Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.EnableEvents && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when events are enabled")
	}
	return nil
}

// DomainConfig returns the domain rules carried by the configuration.
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	return &domainconfig.DomainConfig{
		KeywordTopK:       c.Domain.KeywordTopK,
		StopwordSet:       c.Domain.StopwordSet,
		BatchSize:         c.Domain.BatchSize,
		LoadWorkers:       c.Domain.LoadWorkers,
		MaxRetries:        c.Domain.MaxRetries,
		RetryBaseDelay:    c.Domain.RetryBaseDelay,
		DefaultQueryLimit: c.Domain.DefaultQueryLimit,
		MaxQueryLimit:     c.Domain.MaxQueryLimit,
	}
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvUint32 gets an unsigned integer environment variable with a default value
func getEnvUint32(key string, defaultValue uint32) uint32 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint32(v)
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
