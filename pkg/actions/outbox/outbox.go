// Package outbox is the delivery boundary for the messaging actions. The
// engine hands fully resolved messages to a Sender; what happens after that
// (SMTP, SMS gateway, in-app notification fan-out) lives behind the
// interface.
package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Channel identifies the delivery medium of a message.
type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelSMS    Channel = "sms"
	ChannelNotify Channel = "notify"
)

// Message is one outbound communication produced by a flow action.
type Message struct {
	Channel   Channel        `json:"channel"`
	Recipient string         `json:"recipient"`
	Subject   string         `json:"subject,omitempty"`
	Body      string         `json:"body"`
	Meta      map[string]any `json:"meta,omitempty"`
	SentAt    time.Time      `json:"sent_at"`
}

// Sender delivers one message. Implementations must be safe for concurrent
// use; flows run in parallel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. It is the
// default sender until a real gateway is wired in.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "outbox")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "Outbound message",
		"channel", msg.Channel,
		"recipient", msg.Recipient,
		"subject", msg.Subject)

	return nil
}

// Memory records messages for inspection, used in tests and dry runs.
type Memory struct {
	mu       sync.Mutex
	messages []Message
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msg)

	return nil
}

// Messages returns a copy of everything sent so far.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Message(nil), m.messages...)
}
