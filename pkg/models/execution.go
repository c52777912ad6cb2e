package models

import "time"

// ExecutionStatus classifies one flow invocation attempt.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success" // every action completed
	ExecutionStatusPartial ExecutionStatus = "partial" // some actions failed
	ExecutionStatusFailed  ExecutionStatus = "failed"  // every attempted action failed
)

// TriggeredBySystem identifies executions started by the scheduler rather
// than a domain event or an operator.
const TriggeredBySystem = "system"

// TriggeredByManual identifies operator-initiated executions.
const TriggeredByManual = "manual"

// ExecutionRecord is the audit entry produced each time a flow runs.
// ActionsCompleted + ActionsFailed always equals the number of actions
// attempted; actions are never skipped on upstream failure.
type ExecutionRecord struct {
	ID               string          `json:"id"`
	FlowID           string          `json:"flow_id"`
	TriggeredAt      time.Time       `json:"triggered_at"`
	TriggeredBy      string          `json:"triggered_by"`
	Status           ExecutionStatus `json:"status"`
	ActionsCompleted int             `json:"actions_completed"`
	ActionsFailed    int             `json:"actions_failed"`
	Error            string          `json:"error,omitempty"`
	DurationMs       int64           `json:"duration_ms"`
}

// EventContext is the transient data handed to condition evaluation and
// template resolution for one flow-matching pass. Data is a private deep copy
// per flow: actions may mutate it, and those writes are visible to the
// template resolution of later actions in the same flow only.
type EventContext struct {
	EventName   string         `json:"event_name"`
	TriggeredAt time.Time      `json:"triggered_at"`
	Data        map[string]any `json:"data,omitempty"`
}

// Evaluation returns the map conditions and templates resolve against: the
// event payload merged at the root plus an injected "event" key.
func (c *EventContext) Evaluation() map[string]any {
	out := make(map[string]any, len(c.Data)+1)
	for k, v := range c.Data {
		out[k] = v
	}

	out["event"] = map[string]any{
		"name":         c.EventName,
		"triggered_at": c.TriggeredAt.UTC().Format(time.RFC3339),
	}

	return out
}

// DeepCopyMap copies nested maps and slices so concurrent flows never share
// mutable state. Scalar leaves are copied by value.
func DeepCopyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}

	return out
}

func deepCopyValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return DeepCopyMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = deepCopyValue(item)
		}

		return out
	default:
		return v
	}
}
