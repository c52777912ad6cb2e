// Package flow implements the automation engine: a registry of flow
// definitions and an orchestrator that matches domain events against them,
// resolves templated action parameters, and executes actions in order.
package flow

import "errors"

var (
	// ErrDuplicateFlowID indicates a registration conflict; the registry keeps
	// the first definition.
	ErrDuplicateFlowID = errors.New("flow id already registered")

	// ErrFlowNotFound indicates an operation referenced an unknown flow id.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrEngineNotRunning is returned by trigger calls before Start or after
	// Stop. The engine does not queue events while stopped.
	ErrEngineNotRunning = errors.New("engine is not running")

	// Registration validation errors.
	ErrMissingFlowID     = errors.New("flow id is required")
	ErrInvalidTrigger    = errors.New("trigger must set either an event name or type \"scheduled\" with a schedule")
	ErrNoActions         = errors.New("flow must declare at least one action")
	ErrMissingActionType = errors.New("every action must declare a type")
)

// IsValidationError reports whether err should surface as a 400 to API
// callers rather than a 500.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrDuplicateFlowID) ||
		errors.Is(err, ErrMissingFlowID) ||
		errors.Is(err, ErrInvalidTrigger) ||
		errors.Is(err, ErrNoActions) ||
		errors.Is(err, ErrMissingActionType)
}
