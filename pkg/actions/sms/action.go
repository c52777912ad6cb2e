// Package sms sends templated text messages through the outbox.
package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kodisha/flowd/pkg/actions/outbox"
	"github.com/kodisha/flowd/pkg/models"
)

var (
	ErrRecipientRequired = errors.New("sms action requires a 'to' parameter")
	ErrMessageRequired   = errors.New("sms action requires a 'message' parameter")
)

type Handler struct {
	sender outbox.Sender
}

func NewHandler(sender outbox.Sender) *Handler {
	return &Handler{sender: sender}
}

func (h *Handler) Type() string {
	return "sms"
}

func (h *Handler) Execute(ctx context.Context, params map[string]any, _ *models.EventContext) (map[string]any, error) {
	to, _ := params["to"].(string)
	if to == "" {
		return nil, ErrRecipientRequired
	}

	message, _ := params["message"].(string)
	if message == "" {
		return nil, ErrMessageRequired
	}

	msg := outbox.Message{
		Channel:   outbox.ChannelSMS,
		Recipient: to,
		Body:      message,
		SentAt:    time.Now().UTC(),
	}

	if err := h.sender.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send sms to %s: %w", to, err)
	}

	return map[string]any{"sent": true, "to": to}, nil
}
