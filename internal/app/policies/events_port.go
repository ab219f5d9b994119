package policies

import (
	"context"

	"wayfarer/internal/domain/shared/events"
)

// EventPublisher pushes recorded domain events to the broker. Publishing is
// best-effort; services log failures and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// NoopPublisher is wired when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, events.DomainEvent) error { return nil }
