// Package task creates follow-up tasks in the entity store.
package task

import (
	"context"
	"errors"
	"time"

	"github.com/kodisha/flowd/pkg/entities"
	"github.com/kodisha/flowd/pkg/models"
)

var ErrTitleRequired = errors.New("task action requires a 'title' parameter")

type Handler struct {
	store *entities.Store
}

func NewHandler(store *entities.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Type() string {
	return "task"
}

func (h *Handler) Execute(_ context.Context, params map[string]any, _ *models.EventContext) (map[string]any, error) {
	title, _ := params["title"].(string)
	if title == "" {
		return nil, ErrTitleRequired
	}

	t := &entities.Task{Title: title}

	if description, ok := params["description"].(string); ok {
		t.Description = description
	}

	if assignTo, ok := params["assign_to"].(string); ok {
		t.AssignedTo = assignTo
	}

	if relatedTo, ok := params["related_to"].(string); ok {
		t.RelatedTo = relatedTo
	}

	if days := numeric(params["due_in_days"]); days > 0 {
		due := time.Now().UTC().AddDate(0, 0, days)
		t.DueAt = &due
	}

	created := h.store.CreateTask(t)

	return map[string]any{"task_id": created.ID, "title": created.Title}, nil
}

// numeric tolerates the float64 that JSON decoding produces for numbers.
func numeric(v any) int {
	switch typed := v.(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	default:
		return 0
	}
}
