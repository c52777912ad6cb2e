package registry

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/kodisha/flowd/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	actionType string
	result     map[string]any
}

func (h *stubHandler) Type() string { return h.actionType }

func (h *stubHandler) Execute(_ context.Context, _ map[string]any, _ *models.EventContext) (map[string]any, error) {
	return h.result, nil
}

func TestActionRegistry_RegisterAndGet(t *testing.T) {
	reg := NewActionRegistry(slog.Default())
	reg.Register(&stubHandler{actionType: "email"})

	handler, err := reg.Get("email")
	require.NoError(t, err)
	assert.Equal(t, "email", handler.Type())
}

func TestActionRegistry_UnknownType(t *testing.T) {
	reg := NewActionRegistry(slog.Default())

	_, err := reg.Get("sms")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownActionType))
	assert.Contains(t, err.Error(), "sms")
}

func TestActionRegistry_ReRegistrationReplaces(t *testing.T) {
	reg := NewActionRegistry(slog.Default())

	first := &stubHandler{actionType: "email", result: map[string]any{"v": 1}}
	second := &stubHandler{actionType: "email", result: map[string]any{"v": 2}}

	reg.Register(first)
	reg.Register(second)

	handler, err := reg.Get("email")
	require.NoError(t, err)

	result, err := handler.Execute(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"v": 2}, result)
}

func TestActionRegistry_TypesSorted(t *testing.T) {
	reg := NewActionRegistry(slog.Default())
	reg.Register(&stubHandler{actionType: "sms"})
	reg.Register(&stubHandler{actionType: "email"})
	reg.Register(&stubHandler{actionType: "data"})

	assert.Equal(t, []string{"data", "email", "sms"}, reg.Types())
}
