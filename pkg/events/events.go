// Package events defines the domain event envelope and the event names the
// built-in flows subscribe to.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topic is the bus topic all domain events travel on.
const Topic = "kodisha.events"

// EventNameMetadataKey carries the event name in message metadata so
// consumers can route without unmarshalling the payload.
const EventNameMetadataKey = "event_name"

// Domain event names. Model lifecycle hooks and pollers emit these; flow
// triggers subscribe by name. The engine imposes no payload schema.
const (
	ContactCreated = "contact.created"
	ContactUpdated = "contact.updated"
	ContactTagged  = "contact.tagged"

	LeaseCreated  = "lease.created"
	LeaseExpiring = "lease.expiring"

	PaymentReceived = "payment.received"
	PaymentFailed   = "payment.failed"
	RentOverdue     = "rent.overdue"

	MaintenanceCreated  = "maintenance.created"
	MaintenanceResolved = "maintenance.resolved"

	MilestoneOverdue = "milestone.overdue"
)

// DomainEvent is the envelope fed to the flow engine. Data is a free-form
// payload understood by the flows subscribed to the event name.
type DomainEvent struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// NewDomainEvent builds an envelope with a fresh id and timestamp.
func NewDomainEvent(name string, data map[string]any) DomainEvent {
	return DomainEvent{
		ID:         uuid.New().String(),
		Name:       name,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}
