package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kodisha/flowd/pkg/conditions"
	"github.com/kodisha/flowd/pkg/models"
	"github.com/kodisha/flowd/pkg/otelhelper"
	"github.com/kodisha/flowd/pkg/registry"
	"github.com/kodisha/flowd/pkg/template"
)

// DefaultActionTimeout converts a hung action handler into a recorded
// failure without aborting the rest of the flow.
const DefaultActionTimeout = 30 * time.Second

// Config tunes an Engine. Zero values select the defaults.
type Config struct {
	HistoryCapacity int
	ActionTimeout   time.Duration
	// DelayUnit is the duration of one action delay unit. Production uses
	// minutes; tests shrink it to keep delayed flows fast.
	DelayUnit time.Duration
	Tracer    trace.Tracer
}

// Engine subscribes flows to domain events. On each event it fans out to all
// enabled flows whose trigger matches, evaluates their conditions, resolves
// templated action parameters, and executes actions in declared order.
//
// Failure isolation is the central contract: one action's error never aborts
// sibling actions, and one flow's failure never affects other flows matched
// by the same event. A condition mismatch produces no execution record.
type Engine struct {
	logger        *slog.Logger
	actions       *registry.ActionRegistry
	flows         *Registry
	history       *History
	tracer        trace.Tracer
	running       atomic.Bool
	actionTimeout time.Duration
	delayUnit     time.Duration
}

func NewEngine(logger *slog.Logger, actions *registry.ActionRegistry, cfg Config) *Engine {
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = DefaultActionTimeout
	}

	if cfg.DelayUnit <= 0 {
		cfg.DelayUnit = time.Minute
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("flowd/engine")
	}

	return &Engine{
		logger:        logger.With("module", "flow_engine"),
		actions:       actions,
		flows:         NewRegistry(),
		history:       NewHistory(cfg.HistoryCapacity),
		tracer:        tracer,
		actionTimeout: cfg.ActionTimeout,
		delayUnit:     cfg.DelayUnit,
	}
}

// Flows exposes the flow registry for registration and lifecycle operations.
func (e *Engine) Flows() *Registry {
	return e.flows
}

// Actions exposes the action handler registry.
func (e *Engine) Actions() *registry.ActionRegistry {
	return e.actions
}

// Running reports the engine state.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Start moves the engine to running. Trigger calls before Start are rejected.
func (e *Engine) Start(ctx context.Context) error {
	if e.running.Swap(true) {
		return nil
	}

	e.logger.InfoContext(ctx, "Flow engine started",
		"flows", len(e.flows.List()),
		"action_types", e.actions.Types())

	return nil
}

// Stop moves the engine back to stopped. In-flight executions finish; new
// trigger calls are rejected. Events arriving while stopped are not queued.
func (e *Engine) Stop(ctx context.Context) error {
	if !e.running.Swap(false) {
		return nil
	}

	e.logger.InfoContext(ctx, "Flow engine stopped")

	return nil
}

// TriggerEvent dispatches a named event to every matching flow and returns
// once all of them have completed, with one execution record per flow that
// ran. Flows whose conditions did not match are absent from the result.
func (e *Engine) TriggerEvent(ctx context.Context, eventName string, eventData map[string]any) ([]*models.ExecutionRecord, error) {
	if !e.running.Load() {
		return nil, fmt.Errorf("%w: cannot trigger event %q", ErrEngineNotRunning, eventName)
	}

	candidates := e.flows.Matching(eventName)

	e.logger.DebugContext(ctx, "Dispatching event",
		"event", eventName,
		"candidate_flows", len(candidates))

	if len(candidates) == 0 {
		return nil, nil
	}

	// Matched flows are independent: each runs on its own goroutine with its
	// own deep copy of the payload, so a hung or failing flow cannot affect
	// its siblings. Cross-flow ordering is deliberately unspecified.
	results := make([]*models.ExecutionRecord, len(candidates))

	var wg sync.WaitGroup

	for i, def := range candidates {
		wg.Add(1)

		go func(slot int, def *models.FlowDefinition) {
			defer wg.Done()

			results[slot] = e.runFlow(ctx, def, eventName, models.DeepCopyMap(eventData))
		}(i, def)
	}

	wg.Wait()

	records := make([]*models.ExecutionRecord, 0, len(candidates))

	for _, record := range results {
		if record != nil {
			records = append(records, record)
		}
	}

	return records, nil
}

// TriggerFlow runs a single flow directly, bypassing event matching but not
// condition evaluation. The scheduler uses it with triggeredBy "system";
// operators use "manual".
func (e *Engine) TriggerFlow(ctx context.Context, flowID, triggeredBy string, data map[string]any) (*models.ExecutionRecord, error) {
	if !e.running.Load() {
		return nil, fmt.Errorf("%w: cannot trigger flow %q", ErrEngineNotRunning, flowID)
	}

	def, ok := e.flows.Get(flowID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, flowID)
	}

	return e.runFlow(ctx, def, triggeredBy, models.DeepCopyMap(data)), nil
}

// History returns the most recent execution records, newest first.
func (e *Engine) History(limit int) []*models.ExecutionRecord {
	return e.history.Recent(limit)
}

// EngineStats aggregates execution counters across all flows.
type EngineStats struct {
	Running              bool                        `json:"running"`
	Flows                int                         `json:"flows"`
	EnabledFlows         int                         `json:"enabled_flows"`
	TotalExecutions      int64                       `json:"total_executions"`
	SuccessfulExecutions int64                       `json:"successful_executions"`
	FailedExecutions     int64                       `json:"failed_executions"`
	HistorySize          int                         `json:"history_size"`
	ByFlow               map[string]models.FlowStats `json:"by_flow"`
}

// Stats snapshots engine-wide statistics.
func (e *Engine) Stats() EngineStats {
	stats := EngineStats{
		Running:     e.running.Load(),
		HistorySize: e.history.Len(),
		ByFlow:      make(map[string]models.FlowStats),
	}

	for _, def := range e.flows.List() {
		stats.Flows++

		if def.Enabled {
			stats.EnabledFlows++
		}

		flowStats, _ := e.flows.Stats(def.ID)
		stats.ByFlow[def.ID] = flowStats
		stats.TotalExecutions += flowStats.TotalExecutions
		stats.SuccessfulExecutions += flowStats.SuccessfulExecutions
		stats.FailedExecutions += flowStats.FailedExecutions
	}

	return stats
}

// runFlow evaluates conditions and executes the flow's actions in declared
// order. It returns nil when conditions did not match (skipped flows leave
// no record) and the appended execution record otherwise.
func (e *Engine) runFlow(ctx context.Context, def *models.FlowDefinition, triggeredBy string, data map[string]any) *models.ExecutionRecord {
	start := time.Now()

	eventName := def.Trigger.Event
	if eventName == "" {
		// Scheduled and manual runs have no originating event.
		eventName = triggeredBy
	}

	eventCtx := &models.EventContext{
		EventName:   eventName,
		TriggeredAt: start.UTC(),
		Data:        data,
	}

	logger := e.logger.With("flow_id", def.ID, "triggered_by", triggeredBy)

	if !conditions.Evaluate(def.Conditions, eventCtx.Evaluation()) {
		logger.DebugContext(ctx, "Flow conditions not met, skipping")

		return nil
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "flow.execute",
		attribute.String(otelhelper.FlowIDKey, def.ID),
		attribute.String(otelhelper.TriggeredByKey, triggeredBy),
	)
	defer span.End()

	record := &models.ExecutionRecord{
		ID:          "exec-" + uuid.New().String(),
		FlowID:      def.ID,
		TriggeredAt: start.UTC(),
		TriggeredBy: triggeredBy,
	}

	// Actions run strictly in declared order so later actions can rely on
	// earlier side effects. A failed action is recorded and the remaining
	// actions still run.
	for i, action := range def.Actions {
		if err := e.executeAction(ctx, logger, action, eventCtx); err != nil {
			record.ActionsFailed++
			record.Error = err.Error()

			otelhelper.SetError(span, err,
				attribute.String(otelhelper.ActionTypeKey, action.Type),
				attribute.Int(otelhelper.ActionIndexKey, i),
			)
			logger.WarnContext(ctx, "Flow action failed",
				"action_type", action.Type,
				"action_index", i,
				"error", err)

			continue
		}

		record.ActionsCompleted++
	}

	switch {
	case record.ActionsFailed == 0:
		record.Status = models.ExecutionStatusSuccess
	case record.ActionsCompleted == 0:
		record.Status = models.ExecutionStatusFailed
	default:
		record.Status = models.ExecutionStatusPartial
	}

	record.DurationMs = time.Since(start).Milliseconds()

	e.history.Append(record)
	e.flows.recordExecution(record)

	logger.InfoContext(ctx, "Flow executed",
		"status", record.Status,
		"actions_completed", record.ActionsCompleted,
		"actions_failed", record.ActionsFailed,
		"duration_ms", record.DurationMs)

	return record
}

func (e *Engine) executeAction(ctx context.Context, logger *slog.Logger, action models.ActionSpec, eventCtx *models.EventContext) error {
	if action.DelayMinutes > 0 {
		// The delay suspends only this flow's goroutine; other flows keep
		// dispatching.
		timer := time.NewTimer(time.Duration(action.DelayMinutes) * e.delayUnit)

		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()

			return fmt.Errorf("delay interrupted for action %q: %w", action.Type, ctx.Err())
		}
	}

	// Parameters are resolved against the context as it stands now, so
	// mutations made by earlier actions in this flow are visible here.
	params := template.ResolveParams(action.Params, eventCtx.Evaluation())

	handler, err := e.actions.Get(action.Type)
	if err != nil {
		return err
	}

	actionCtx, cancel := context.WithTimeout(ctx, e.actionTimeout)
	defer cancel()

	type outcome struct {
		result map[string]any
		err    error
	}

	done := make(chan outcome, 1)

	go func() {
		result, execErr := handler.Execute(actionCtx, params, eventCtx)
		done <- outcome{result: result, err: execErr}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return fmt.Errorf("action %q: %w", action.Type, out.err)
		}

		logger.DebugContext(ctx, "Action completed", "action_type", action.Type, "result", out.result)

		return nil
	case <-actionCtx.Done():
		return fmt.Errorf("action %q did not complete: %w", action.Type, actionCtx.Err())
	}
}
