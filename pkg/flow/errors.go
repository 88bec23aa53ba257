package flow

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// Common sentinel errors
var (
	// ErrEmptyFlow means the input has zero total link weight; the caller
	// must not run the optimizer on the result.
	ErrEmptyFlow = errors.New("total link weight is zero")
	// ErrAborted means the abort flag was observed between iterations.
	// The returned result holds the partial state.
	ErrAborted = errors.New("flow calculation aborted")
	// ErrInvalidConfig wraps an options validation failure.
	ErrInvalidConfig = errors.New("invalid flow configuration")
)

// FlowError provides structured error information for flow operations.
type FlowError struct {
	Op    string // Operation that failed (e.g., "Calculate")
	Model graph.FlowModel
	Cause error
}

// Error implements the error interface.
func (e *FlowError) Error() string {
	return fmt.Sprintf("%s (model %s): %v", e.Op, e.Model, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *FlowError) Unwrap() error {
	return e.Cause
}
