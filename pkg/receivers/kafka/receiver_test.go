package kafka

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodisha/flowd/pkg/events"
)

func TestNewReceiverRequiresTopics(t *testing.T) {
	t.Parallel()

	_, err := NewReceiver(Config{}, nil, slog.Default())
	assert.Error(t, err)
}

func TestNewReceiverDefaults(t *testing.T) {
	t.Parallel()

	receiver, err := NewReceiver(Config{Topics: []string{"payments"}}, nil, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "flowd-receiver", receiver.config.ConsumerGroup)
	assert.NotEmpty(t, receiver.config.Brokers)
}

func TestDecodeEventEnvelope(t *testing.T) {
	t.Parallel()

	original := events.NewDomainEvent(events.PaymentReceived, map[string]any{"amount": 1200.0})
	payload, err := json.Marshal(original)
	require.NoError(t, err)

	decoded := decodeEvent(&sarama.ConsumerMessage{Topic: "payments", Value: payload})
	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, events.PaymentReceived, decoded.Name)
	assert.Equal(t, 1200.0, decoded.Data["amount"])
}

func TestDecodeEventRawPayloadWrapsTopic(t *testing.T) {
	t.Parallel()

	decoded := decodeEvent(&sarama.ConsumerMessage{
		Topic: "payment.received",
		Value: []byte(`{"amount": 500}`),
	})
	assert.Equal(t, "payment.received", decoded.Name)
	assert.Equal(t, 500.0, decoded.Data["amount"])
	assert.NotEmpty(t, decoded.ID)
}

func TestDecodeEventNonJSONPayload(t *testing.T) {
	t.Parallel()

	decoded := decodeEvent(&sarama.ConsumerMessage{
		Topic: "raw.topic",
		Value: []byte("not json"),
	})
	assert.Equal(t, "raw.topic", decoded.Name)
	assert.Nil(t, decoded.Data)
}
