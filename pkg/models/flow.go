// Package models defines the core domain models for flow automation.
package models

import "time"

// TriggerTypeScheduled marks a flow as time-driven instead of event-driven.
const TriggerTypeScheduled = "scheduled"

// Trigger activates a flow. Exactly one of Event or Type=="scheduled" with a
// Schedule must be set.
type Trigger struct {
	Event    string `json:"event,omitempty"`
	Type     string `json:"type,omitempty"`
	Schedule string `json:"schedule,omitempty"`
}

// Scheduled reports whether the trigger is time-driven.
func (t Trigger) Scheduled() bool {
	return t.Type == TriggerTypeScheduled
}

// Condition is a single field/operator/value check against event context.
// Field is a dotted path into the context.
type Condition struct {
	Field    string `json:"field"    validate:"required"`
	Operator string `json:"operator" validate:"required"`
	Value    any    `json:"value"`
}

// ActionSpec is one effect-producing step within a flow. Params values may be
// literals or template strings containing {{dotted.path}} placeholders.
// DelayMinutes postpones this action without blocking other flows.
type ActionSpec struct {
	Type         string         `json:"type" validate:"required"`
	Params       map[string]any `json:"params"`
	DelayMinutes int            `json:"delay_minutes,omitempty"`
}

// FlowDefinition is a registered automation rule: trigger + conditions +
// ordered actions. ID is immutable once registered.
type FlowDefinition struct {
	ID          string       `json:"id"   validate:"required"`
	Name        string       `json:"name" validate:"required,min=3"`
	Description string       `json:"description"`
	Trigger     Trigger      `json:"trigger"`
	Conditions  []Condition  `json:"conditions,omitempty"`
	Actions     []ActionSpec `json:"actions" validate:"required,min=1,dive"`
	Enabled     bool         `json:"enabled"`
	CreatedAt   time.Time    `json:"created_at,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at,omitempty"`
}

// FlowStats holds the running execution statistics for one flow. The average
// is maintained as a true incremental mean, not the (old+new)/2 shortcut.
type FlowStats struct {
	TotalExecutions      int64      `json:"total_executions"`
	SuccessfulExecutions int64      `json:"successful_executions"`
	FailedExecutions     int64      `json:"failed_executions"`
	LastExecuted         *time.Time `json:"last_executed,omitempty"`
	AverageDurationMs    float64    `json:"average_duration_ms"`
}

// Record folds one execution result into the stats.
func (s *FlowStats) Record(status ExecutionStatus, triggeredAt time.Time, durationMs int64) {
	s.TotalExecutions++

	if status == ExecutionStatusSuccess {
		s.SuccessfulExecutions++
	} else {
		s.FailedExecutions++
	}

	at := triggeredAt
	s.LastExecuted = &at
	s.AverageDurationMs += (float64(durationMs) - s.AverageDurationMs) / float64(s.TotalExecutions)
}
