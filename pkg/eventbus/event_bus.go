// Package eventbus carries domain events from their emitters (entity
// lifecycle hooks, external producers) to the flow engine.
package eventbus

import (
	"context"

	"github.com/kodisha/flowd/pkg/events"
)

// Handler consumes one domain event.
type Handler func(ctx context.Context, event events.DomainEvent) error

type Publisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, handler Handler) error
}

type EventBus interface {
	Publisher
	Subscriber
	Close() error
	GenerateID() string
}
