package di

import (
	"go.uber.org/zap"

	"paperindex/application/loading"
	"paperindex/application/ports"
	"paperindex/application/queries"
	"paperindex/infrastructure/config"
	"paperindex/infrastructure/observability"
	"paperindex/infrastructure/persistence/dynamodb"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Table       *dynamodb.ViewStore
	Backend     Backend
	Metrics     *observability.Collector
	Publisher   ports.EventPublisher
	Coordinator *loading.Coordinator
	Router      *queries.Router
}

// Shutdown flushes buffered log entries
func (c *Container) Shutdown() {
	_ = c.Logger.Sync()
}
