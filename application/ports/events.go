package ports

import (
	"context"

	"paperindex/domain/events"
)

// EventPublisher delivers domain events to interested parties
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// NopEventPublisher discards every event
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, events.DomainEvent) error        { return nil }
func (NopEventPublisher) PublishBatch(context.Context, []events.DomainEvent) error { return nil }
