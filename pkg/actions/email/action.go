// Package email sends templated email through the outbox.
package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kodisha/flowd/pkg/actions/outbox"
	"github.com/kodisha/flowd/pkg/models"
)

var ErrRecipientRequired = errors.New("email action requires a 'to' parameter")

// Handler delivers email messages. Params arrive with templates already
// resolved against the event context.
type Handler struct {
	sender outbox.Sender
}

func NewHandler(sender outbox.Sender) *Handler {
	return &Handler{sender: sender}
}

func (h *Handler) Type() string {
	return "email"
}

func (h *Handler) Execute(ctx context.Context, params map[string]any, _ *models.EventContext) (map[string]any, error) {
	to, _ := params["to"].(string)
	if to == "" {
		return nil, ErrRecipientRequired
	}

	subject, _ := params["subject"].(string)

	body, _ := params["body"].(string)
	if body == "" {
		// Some flows reference a stored template instead of an inline body.
		if name, _ := params["template"].(string); name != "" {
			body = fmt.Sprintf("[template:%s]", name)
		}
	}

	msg := outbox.Message{
		Channel:   outbox.ChannelEmail,
		Recipient: to,
		Subject:   subject,
		Body:      body,
		SentAt:    time.Now().UTC(),
	}

	if err := h.sender.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return map[string]any{"sent": true, "to": to}, nil
}
