// Package messaging delivers load events to every configured sink.
package messaging

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"paperindex/application/ports"
	"paperindex/domain/events"
)

// FanOutPublisher hands every event to each wrapped publisher. A failing
// sink does not stop delivery to the others; their errors are joined.
type FanOutPublisher struct {
	publishers []ports.EventPublisher
	logger     *zap.Logger
}

// NewFanOutPublisher creates a publisher over the non-nil publishers given
func NewFanOutPublisher(logger *zap.Logger, publishers ...ports.EventPublisher) *FanOutPublisher {
	kept := make([]ports.EventPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &FanOutPublisher{publishers: kept, logger: logger}
}

// Len returns the number of sinks
func (f *FanOutPublisher) Len() int { return len(f.publishers) }

func (f *FanOutPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			f.logger.Warn("Event sink failed",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (f *FanOutPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.PublishBatch(ctx, domainEvents); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
