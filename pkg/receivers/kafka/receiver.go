// Package kafka consumes external domain events (payment-gateway callbacks,
// CRM webhook relays) from Kafka topics and feeds them to the flow engine.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/kodisha/flowd/pkg/events"
)

// EventSink receives decoded domain events; in production it wraps
// engine.TriggerEvent through the bus feed handler.
type EventSink func(ctx context.Context, event events.DomainEvent) error

// Config describes one Kafka subscription.
type Config struct {
	Topics        []string `json:"topics"`
	Brokers       []string `json:"brokers"`
	ConsumerGroup string   `json:"consumer_group"`
}

// Receiver runs a sarama consumer group and forwards messages whose payload
// decodes as a DomainEvent. Messages without an envelope are wrapped using
// the topic name as the event name.
type Receiver struct {
	config   Config
	sink     EventSink
	logger   *slog.Logger
	consumer sarama.ConsumerGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewReceiver(config Config, sink EventSink, logger *slog.Logger) (*Receiver, error) {
	if len(config.Topics) == 0 {
		return nil, errors.New("at least one kafka topic is required")
	}

	if len(config.Brokers) == 0 {
		config.Brokers = brokersFromEnv()
	}

	if config.ConsumerGroup == "" {
		config.ConsumerGroup = "flowd-receiver"
	}

	return &Receiver{
		config: config,
		sink:   sink,
		logger: logger.With("module", "kafka_receiver"),
	}, nil
}

func (r *Receiver) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Session.Timeout = 10 * time.Second
	config.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumerGroup(r.config.Brokers, r.config.ConsumerGroup, config)
	if err != nil {
		return fmt.Errorf("failed to create kafka consumer group: %w", err)
	}

	r.consumer = consumer

	go func() {
		handler := &consumerHandler{receiver: r}

		for {
			select {
			case <-r.ctx.Done():
				r.logger.Info("Kafka receiver context cancelled")

				return
			default:
				if err := consumer.Consume(r.ctx, r.config.Topics, handler); err != nil {
					r.logger.Error("Kafka consumer error", "error", err)
					time.Sleep(5 * time.Second)
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case err := <-consumer.Errors():
				if err != nil {
					r.logger.Error("Kafka consumer group error", "error", err)
				}
			case <-r.ctx.Done():
				return
			}
		}
	}()

	r.logger.Info("Kafka receiver started",
		"topics", r.config.Topics,
		"consumer_group", r.config.ConsumerGroup)

	return nil
}

func (r *Receiver) Stop(_ context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	if r.consumer != nil {
		return r.consumer.Close()
	}

	return nil
}

type consumerHandler struct {
	receiver *Receiver
}

func (h *consumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		event := decodeEvent(msg)

		if err := h.receiver.sink(session.Context(), event); err != nil {
			h.receiver.logger.Error("Failed to dispatch kafka event",
				"topic", msg.Topic,
				"event", event.Name,
				"error", err)
		}

		session.MarkMessage(msg, "")
	}

	return nil
}

func decodeEvent(msg *sarama.ConsumerMessage) events.DomainEvent {
	var event events.DomainEvent

	if err := json.Unmarshal(msg.Value, &event); err == nil && event.Name != "" {
		return event
	}

	// Raw payloads are wrapped so flows can still subscribe by topic name.
	var data map[string]any
	_ = json.Unmarshal(msg.Value, &data)

	return events.NewDomainEvent(msg.Topic, data)
}

func brokersFromEnv() []string {
	brokersStr := os.Getenv("KAFKA_BROKERS")
	if brokersStr == "" {
		brokersStr = "localhost:9092"
	}

	brokers := strings.Split(brokersStr, ",")
	for i, broker := range brokers {
		brokers[i] = strings.TrimSpace(broker)
	}

	return brokers
}
