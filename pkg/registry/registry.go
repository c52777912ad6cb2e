// Package registry maps action-type names to their handlers.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/kodisha/flowd/pkg/models"
)

// ErrUnknownActionType is returned when a flow action references a type no
// handler was registered for. The engine records it as a per-action failure.
var ErrUnknownActionType = errors.New("unknown action type")

// Handler executes one action kind. Implementations must return an error on
// failure and must not retry internally.
type Handler interface {
	Type() string
	Execute(ctx context.Context, params map[string]any, eventCtx *models.EventContext) (map[string]any, error)
}

// ActionRegistry stores action handlers keyed by type. Re-registering a type
// replaces the handler, which allows hot-swapping implementations at runtime.
type ActionRegistry struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewActionRegistry(logger *slog.Logger) *ActionRegistry {
	return &ActionRegistry{
		logger:   logger.With("module", "action_registry"),
		handlers: make(map[string]Handler),
	}
}

// Register adds or replaces the handler for its type.
func (r *ActionRegistry) Register(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[handler.Type()]; exists {
		r.logger.Info("Replacing action handler", "action_type", handler.Type())
	}

	r.handlers[handler.Type()] = handler
}

// Get returns the handler for actionType or ErrUnknownActionType.
func (r *ActionRegistry) Get(actionType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[actionType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActionType, actionType)
	}

	return handler, nil
}

// Types lists the registered action types in stable order.
func (r *ActionRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for actionType := range r.handlers {
		types = append(types, actionType)
	}

	sort.Strings(types)

	return types
}

// HealthCheck reports handler availability for the health endpoint.
func (r *ActionRegistry) HealthCheck() (map[string]any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]any{"registered_actions": len(r.handlers)}, len(r.handlers) > 0
}
