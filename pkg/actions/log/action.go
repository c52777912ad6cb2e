// Package log writes a templated message to the service log. Useful while
// developing flows and as a no-op placeholder action.
package log

import (
	"context"
	"log/slog"

	"github.com/kodisha/flowd/pkg/models"
)

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger.With("module", "log_action")}
}

func (h *Handler) Type() string {
	return "log"
}

func (h *Handler) Execute(ctx context.Context, params map[string]any, eventCtx *models.EventContext) (map[string]any, error) {
	message, _ := params["message"].(string)
	level, _ := params["level"].(string)

	attrs := []any{"event", eventCtx.EventName}

	switch level {
	case "debug":
		h.logger.DebugContext(ctx, message, attrs...)
	case "warn", "warning":
		h.logger.WarnContext(ctx, message, attrs...)
	case "error":
		h.logger.ErrorContext(ctx, message, attrs...)
	default:
		h.logger.InfoContext(ctx, message, attrs...)
	}

	return map[string]any{"logged": true}, nil
}
