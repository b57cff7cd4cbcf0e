package config

import (
	"fmt"
	"time"
)

// MaxStoreBatchSize is the largest number of records the store accepts in one batch write.
const MaxStoreBatchSize = 25

// DomainConfig holds all configurable indexing and query rules
type DomainConfig struct {
	// Keyword extraction
	KeywordTopK int
	StopwordSet string

	// Loading
	BatchSize      int
	LoadWorkers    int
	MaxRetries     int
	RetryBaseDelay time.Duration

	// Queries
	DefaultQueryLimit int
	MaxQueryLimit     int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		KeywordTopK: 10,
		StopwordSet: "en-academic",

		BatchSize:      MaxStoreBatchSize,
		LoadWorkers:    4,
		MaxRetries:     3,
		RetryBaseDelay: 100 * time.Millisecond,

		DefaultQueryLimit: 10,
		MaxQueryLimit:     100,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.LoadWorkers = 8
	config.MaxRetries = 5

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Local DynamoDB is slow to throttle and quick to recover.
	config.LoadWorkers = 2
	config.RetryBaseDelay = 10 * time.Millisecond

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.KeywordTopK < 0 {
		return fmt.Errorf("keyword top-k must not be negative, got %d", c.KeywordTopK)
	}
	if c.BatchSize < 1 || c.BatchSize > MaxStoreBatchSize {
		return fmt.Errorf("batch size must be between 1 and %d, got %d", MaxStoreBatchSize, c.BatchSize)
	}
	if c.LoadWorkers < 1 {
		return fmt.Errorf("load workers must be at least 1, got %d", c.LoadWorkers)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.DefaultQueryLimit < 1 || c.DefaultQueryLimit > c.MaxQueryLimit {
		return fmt.Errorf("default query limit %d must be between 1 and max query limit %d", c.DefaultQueryLimit, c.MaxQueryLimit)
	}
	return nil
}
