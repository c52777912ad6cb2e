package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodisha/flowd/pkg/actions/outbox"
)

func TestExecuteDefaultsChannel(t *testing.T) {
	t.Parallel()

	sent := outbox.NewMemory()
	handler := NewHandler(sent)

	result, err := handler.Execute(context.Background(), map[string]any{
		"message": "Payment received from tenant A-12",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "general", result["channel"])

	messages := sent.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, outbox.ChannelNotify, messages[0].Channel)
	assert.Equal(t, "general", messages[0].Recipient)
}

func TestExecuteRequiresMessage(t *testing.T) {
	t.Parallel()

	handler := NewHandler(outbox.NewMemory())

	_, err := handler.Execute(context.Background(), map[string]any{
		"channel": "ops",
	}, nil)
	assert.ErrorIs(t, err, ErrMessageRequired)
}
