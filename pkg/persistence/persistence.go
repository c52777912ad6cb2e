// Package persistence abstracts durable storage of flow definitions. Stores
// only feed definitions into the engine's registry; execution state never
// persists here.
package persistence

import (
	"context"

	"github.com/kodisha/flowd/pkg/models"
)

type FlowStore interface {
	Flows(ctx context.Context) ([]*models.FlowDefinition, error)
	FlowByID(ctx context.Context, id string) (*models.FlowDefinition, error)
	SaveFlow(ctx context.Context, def *models.FlowDefinition) error
	DeleteFlow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
