package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"paperindex/domain/events"
)

// CloudWatchAPI is the subset of the CloudWatch client the publisher uses.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// LoadReportPublisher turns load events into CloudWatch metrics. It
// implements ports.EventPublisher so it can sit next to the event bus.
type LoadReportPublisher struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
}

// NewLoadReportPublisher creates a new CloudWatch load report publisher
func NewLoadReportPublisher(namespace string, client CloudWatchAPI, logger *zap.Logger) *LoadReportPublisher {
	return &LoadReportPublisher{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// Publish records the metrics carried by a load event. Other events are ignored.
func (p *LoadReportPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	data := p.metricData(event)
	if len(data) == 0 || p.client == nil {
		return nil
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: data,
	}
	if _, err := p.client.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("failed to send load metrics: %w", err)
	}

	p.logger.Debug("Load metrics sent to CloudWatch",
		zap.String("eventType", event.GetEventType()),
		zap.Int("metrics", len(data)),
	)
	return nil
}

// PublishBatch publishes each event in turn
func (p *LoadReportPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (p *LoadReportPublisher) metricData(event events.DomainEvent) []types.MetricDatum {
	ts := aws.Time(event.GetTimestamp())
	if event.GetTimestamp().IsZero() {
		ts = aws.Time(time.Now())
	}
	datum := func(name string, value float64, unit types.StandardUnit) types.MetricDatum {
		return types.MetricDatum{
			MetricName: aws.String(name),
			Value:      aws.Float64(value),
			Unit:       unit,
			Timestamp:  ts,
		}
	}

	switch e := event.(type) {
	case events.LoadCompleted:
		return []types.MetricDatum{
			datum("PapersProcessed", float64(e.PapersProcessed), types.StandardUnitCount),
			datum("ViewsWritten", float64(e.ViewsWritten), types.StandardUnitCount),
			datum("DenormalizationFactor", e.DenormalizationFactor, types.StandardUnitNone),
			datum("PapersSkipped", float64(len(e.SkippedPaperIDs)), types.StandardUnitCount),
		}
	case events.LoadFailed:
		return []types.MetricDatum{
			datum("LoadFailures", 1, types.StandardUnitCount),
			datum("UnwrittenPapers", float64(len(e.UnwrittenIDs)), types.StandardUnitCount),
		}
	default:
		return nil
	}
}
