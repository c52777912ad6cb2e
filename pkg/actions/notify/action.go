// Package notify posts in-app notifications to a team channel through the
// outbox.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kodisha/flowd/pkg/actions/outbox"
	"github.com/kodisha/flowd/pkg/models"
)

const defaultChannel = "general"

var ErrMessageRequired = errors.New("notify action requires a 'message' parameter")

type Handler struct {
	sender outbox.Sender
}

func NewHandler(sender outbox.Sender) *Handler {
	return &Handler{sender: sender}
}

func (h *Handler) Type() string {
	return "notify"
}

func (h *Handler) Execute(ctx context.Context, params map[string]any, _ *models.EventContext) (map[string]any, error) {
	message, _ := params["message"].(string)
	if message == "" {
		return nil, ErrMessageRequired
	}

	channel, _ := params["channel"].(string)
	if channel == "" {
		channel = defaultChannel
	}

	title, _ := params["title"].(string)

	msg := outbox.Message{
		Channel:   outbox.ChannelNotify,
		Recipient: channel,
		Subject:   title,
		Body:      message,
		SentAt:    time.Now().UTC(),
	}

	if err := h.sender.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to notify channel %s: %w", channel, err)
	}

	return map[string]any{"notified": true, "channel": channel}, nil
}
