// Package data mutates the event context of a running flow, so later actions
// in the same flow see the written values. It can optionally persist the same
// write onto a contact record.
package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kodisha/flowd/pkg/entities"
	"github.com/kodisha/flowd/pkg/models"
)

const (
	opSet       = "set"
	opIncrement = "increment"
)

var (
	ErrFieldRequired      = errors.New("data action requires a 'field' parameter")
	ErrUnknownOperation   = errors.New("unknown data operation")
	ErrIncrementNotNumber = errors.New("increment target is not a number")
)

// Handler applies set/increment writes at a dotted path in the event context.
// The store is optional; without it contact_id params are ignored.
type Handler struct {
	store *entities.Store
}

func NewHandler(store *entities.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Type() string {
	return "data"
}

func (h *Handler) Execute(ctx context.Context, params map[string]any, eventCtx *models.EventContext) (map[string]any, error) {
	field, _ := params["field"].(string)
	if field == "" {
		return nil, ErrFieldRequired
	}

	op, _ := params["op"].(string)
	if op == "" {
		op = opSet
	}

	if eventCtx.Data == nil {
		eventCtx.Data = make(map[string]any)
	}

	var written any

	switch op {
	case opSet:
		written = params["value"]

		setPath(eventCtx.Data, field, written)
	case opIncrement:
		by := 1.0
		if v, ok := toFloat(params["by"]); ok {
			by = v
		}

		current, exists := lookupPath(eventCtx.Data, field)
		if !exists {
			current = 0.0
		}

		currentNum, ok := toFloat(current)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrIncrementNotNumber, field)
		}

		written = currentNum + by

		setPath(eventCtx.Data, field, written)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}

	if contactID, _ := params["contact_id"].(string); contactID != "" && h.store != nil {
		_, err := h.store.UpdateContact(ctx, contactID, map[string]any{field: written})
		if err != nil {
			return nil, fmt.Errorf("failed to persist %s on contact %s: %w", field, contactID, err)
		}
	}

	return map[string]any{"field": field, "value": written}, nil
}

// setPath writes value at a dotted path, creating intermediate maps.
// Non-map intermediates are replaced.
func setPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}

		current = next
	}

	current[parts[len(parts)-1]] = value
}

func lookupPath(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")

	var current any = data

	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

func toFloat(v any) (float64, bool) {
	switch typed := v.(type) {
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	default:
		return 0, false
	}
}
