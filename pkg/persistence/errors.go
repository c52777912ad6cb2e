package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrFlowNotFound indicates a flow definition was not found by id.
	ErrFlowNotFound = errors.New("flow definition not found")

	// ErrFlowAlreadyExists indicates a definition with the same id exists.
	ErrFlowAlreadyExists = errors.New("flow definition already exists")
)

// IsFlowNotFound reports whether err wraps ErrFlowNotFound.
func IsFlowNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}

// StoreError wraps store failures with operation context.
type StoreError struct {
	Op     string
	FlowID string
	Err    error
}

func (e *StoreError) Error() string {
	if e.FlowID != "" {
		return fmt.Sprintf("%s operation failed for flow %s: %v", e.Op, e.FlowID, e.Err)
	}

	return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op, flowID string, err error) *StoreError {
	return &StoreError{Op: op, FlowID: flowID, Err: err}
}
