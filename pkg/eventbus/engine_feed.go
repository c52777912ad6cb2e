package eventbus

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kodisha/flowd/pkg/events"
	"github.com/kodisha/flowd/pkg/flow"
)

// FeedEngine returns the bus handler that hands incoming domain events to
// the flow engine. Dispatch always acks: action failures are visible through
// the execution history, not the bus. Events arriving while the engine is
// stopped are dropped, matching the engine's no-queueing contract.
func FeedEngine(engine *flow.Engine, logger *slog.Logger) Handler {
	logger = logger.With("module", "engine_feed")

	return func(ctx context.Context, event events.DomainEvent) error {
		records, err := engine.TriggerEvent(ctx, event.Name, event.Data)
		if err != nil {
			if errors.Is(err, flow.ErrEngineNotRunning) {
				logger.WarnContext(ctx, "Dropping event, engine not running", "event", event.Name)

				return nil
			}

			return err
		}

		logger.DebugContext(ctx, "Event dispatched",
			"event", event.Name,
			"flows_executed", len(records))

		return nil
	}
}
