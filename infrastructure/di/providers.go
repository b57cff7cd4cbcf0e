package di

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"

	"paperindex/application/loading"
	"paperindex/application/ports"
	"paperindex/application/queries"
	"paperindex/domain/keywords"
	"paperindex/domain/projection"
	"paperindex/infrastructure/config"
	"paperindex/infrastructure/messaging"
	"paperindex/infrastructure/messaging/eventbridge"
	"paperindex/infrastructure/observability"
	"paperindex/infrastructure/persistence/dynamodb"
	"paperindex/infrastructure/persistence/memory"
	"paperindex/infrastructure/persistence/resilience"
)

// serviceName names the service in traces and breaker logs.
const serviceName = "paperindex"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = level

	return zapCfg.Build(zap.Fields(zap.String("environment", cfg.Environment)))
}

// ProvideAWSConfig creates AWS configuration. With tracing enabled every SDK
// call is recorded as an X-Ray subsegment.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client, pointed at a local
// endpoint when one is configured
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTable creates the DynamoDB-backed store used for provisioning and
// storage inspection
func ProvideTable(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.ViewStore {
	return dynamodb.NewViewStore(
		client,
		cfg.TableName,
		dynamodb.IndexNames{
			Author:  cfg.AuthorIndexName,
			PaperID: cfg.PaperIDIndexName,
			Keyword: cfg.KeywordIndexName,
		},
		logger,
	)
}

// Backend is the store every component reads from and writes to, together
// with its inspector.
type Backend struct {
	Store     ports.ViewStore
	Inspector ports.StorageInspector
}

// ProvideBackend selects the configured store and wraps it with the circuit
// breaker and tracing when they are enabled
func ProvideBackend(table *dynamodb.ViewStore, cfg *config.Config, logger *zap.Logger) Backend {
	if cfg.StoreBackend == "memory" {
		store := memory.NewStore()
		logger.Warn("Using in-memory view store; nothing is persisted")
		return Backend{Store: store, Inspector: store}
	}

	var store ports.ViewStore = table
	if cfg.Breaker.Enabled {
		store = resilience.NewBreakerStore(store, resilience.BreakerConfig{
			Name:         cfg.TableName,
			MaxRequests:  cfg.Breaker.MaxRequests,
			Interval:     cfg.Breaker.Interval,
			Timeout:      cfg.Breaker.Timeout,
			MinRequests:  cfg.Breaker.MinRequests,
			FailureRatio: cfg.Breaker.FailureRatio,
		}, logger)
	}
	if cfg.EnableTracing {
		store = observability.NewTracedStore(store, observability.NewTracer(serviceName))
	}
	return Backend{Store: store, Inspector: table}
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(prometheusNamespace(cfg.MetricsNamespace))
}

// ProvideEventPublisher fans load events out to EventBridge and CloudWatch,
// each only when enabled
func ProvideEventPublisher(
	ebClient *awseventbridge.Client,
	cwClient *awscloudwatch.Client,
	cfg *config.Config,
	logger *zap.Logger,
) ports.EventPublisher {
	var sinks []ports.EventPublisher
	if cfg.EnableEvents {
		sinks = append(sinks, eventbridge.NewPublisher(ebClient, cfg.EventBusName, logger))
	}
	if cfg.EnableMetrics {
		namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
		sinks = append(sinks, observability.NewLoadReportPublisher(namespace, cwClient, logger))
	}
	if len(sinks) == 0 {
		return ports.NopEventPublisher{}
	}
	return messaging.NewFanOutPublisher(logger, sinks...)
}

// ProvideExtractor builds the keyword extractor from the configured stopword
// set, reading extra sets from STOPWORDS_FILE when it is set
func ProvideExtractor(cfg *config.Config) (*keywords.Extractor, error) {
	catalog := keywords.DefaultCatalog()
	if cfg.StopwordsFile != "" {
		f, err := os.Open(cfg.StopwordsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open stopwords file: %w", err)
		}
		defer f.Close()
		if catalog, err = keywords.LoadCatalog(f); err != nil {
			return nil, err
		}
	}

	set, err := catalog.Lookup(cfg.Domain.StopwordSet)
	if err != nil {
		return nil, err
	}
	return keywords.NewExtractor(set), nil
}

// ProvideProjector creates the paper projector
func ProvideProjector(extractor *keywords.Extractor, cfg *config.Config) *projection.Projector {
	return projection.NewProjector(extractor, cfg.Domain.KeywordTopK)
}

// ProvideCoordinator creates the load coordinator
func ProvideCoordinator(
	backend Backend,
	projector *projection.Projector,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *loading.Coordinator {
	return loading.NewCoordinator(backend.Store, projector, publisher, metrics, cfg.DomainConfig(), logger)
}

// ProvideQueryRouter creates the query router
func ProvideQueryRouter(
	backend Backend,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *queries.Router {
	return queries.NewRouter(backend.Store, metrics, cfg.DomainConfig(), cfg.QueryTimeout, logger)
}

// prometheusNamespace turns a CloudWatch-style namespace into a valid
// Prometheus metric prefix
func prometheusNamespace(namespace string) string {
	out := make([]rune, 0, len(namespace))
	for i, r := range namespace {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				out = append(out, '_')
			}
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9' && i > 0:
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
