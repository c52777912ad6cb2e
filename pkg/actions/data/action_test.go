package data

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodisha/flowd/pkg/entities"
	"github.com/kodisha/flowd/pkg/models"
)

func TestExecuteSetCreatesNestedPath(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)
	eventCtx := &models.EventContext{Data: map[string]any{}}

	_, err := handler.Execute(context.Background(), map[string]any{
		"field": "contact.status",
		"value": "qualified",
	}, eventCtx)
	require.NoError(t, err)

	contact, ok := eventCtx.Data["contact"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "qualified", contact["status"])
}

func TestExecuteIncrement(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)
	eventCtx := &models.EventContext{
		Data: map[string]any{"reminder_count": 2.0},
	}

	result, err := handler.Execute(context.Background(), map[string]any{
		"op":    "increment",
		"field": "reminder_count",
	}, eventCtx)
	require.NoError(t, err)
	assert.Equal(t, 3.0, result["value"])
	assert.Equal(t, 3.0, eventCtx.Data["reminder_count"])
}

func TestExecuteIncrementMissingFieldStartsAtZero(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)
	eventCtx := &models.EventContext{Data: map[string]any{}}

	_, err := handler.Execute(context.Background(), map[string]any{
		"op":    "increment",
		"field": "attempts",
		"by":    5.0,
	}, eventCtx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, eventCtx.Data["attempts"])
}

func TestExecuteIncrementNonNumberFails(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)
	eventCtx := &models.EventContext{
		Data: map[string]any{"name": "not a number"},
	}

	_, err := handler.Execute(context.Background(), map[string]any{
		"op":    "increment",
		"field": "name",
	}, eventCtx)
	assert.ErrorIs(t, err, ErrIncrementNotNumber)
}

func TestExecuteUnknownOperation(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)

	_, err := handler.Execute(context.Background(), map[string]any{
		"op":    "divide",
		"field": "x",
	}, &models.EventContext{})
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestExecutePersistsOnContact(t *testing.T) {
	t.Parallel()

	store := entities.NewStore(nil, slog.Default())
	ctx := context.Background()

	contact, err := store.CreateContact(ctx, &entities.Contact{
		Name:  "Tenant",
		Email: "tenant@example.com",
	})
	require.NoError(t, err)

	handler := NewHandler(store)
	eventCtx := &models.EventContext{Data: map[string]any{}}

	_, err = handler.Execute(ctx, map[string]any{
		"field":      "lead_score",
		"value":      80.0,
		"contact_id": contact.ID,
	}, eventCtx)
	require.NoError(t, err)

	stored, err := store.ContactByID(contact.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, stored.Attributes["lead_score"])
}
