package plan

import (
	"fmt"
	"strings"
)

// DuplicateError reports an operator name, stream id, or port name already
// in use, one of the programming-error taxonomy's "duplicate identifier"
// cases.
type DuplicateError struct {
	Kind string // "operator", "stream", or "port"
	ID   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("plan: duplicate %s %q", e.Kind, e.ID)
}

// WiringError reports an illegal wiring attempt: a port already bound, an
// unknown port, or a self-conflict.
type WiringError struct {
	Op     string
	Detail string
}

func (e *WiringError) Error() string {
	return fmt.Sprintf("plan: wiring error during %s: %s", e.Op, e.Detail)
}

// ConstraintViolation is a single field-level failure reported by a
// ConstraintChecker.
type ConstraintViolation struct {
	Path    string
	Message string
}

// ConstraintViolationError aggregates every ConstraintViolation raised for
// one operator into a single error.
type ConstraintViolationError struct {
	Operator   string
	Violations []ConstraintViolation
}

func (e *ConstraintViolationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Path, v.Message))
	}
	return fmt.Sprintf("plan: constraint violations on operator %q: %s", e.Operator, strings.Join(parts, "; "))
}

// TypeMismatchError reports that a value decoded from storage does not
// match its attribute key's declared type.
type TypeMismatchError struct {
	Key  string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("plan: attribute %q expects %s, got %s", e.Key, e.Want, e.Got)
}

// UnknownAttributeError reports an attribute identity token that has no
// registered key, encountered while rebinding a deserialized plan.
type UnknownAttributeError struct {
	Name string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("plan: unknown attribute key %q", e.Name)
}

// SerializationError wraps an I/O failure reported by a StorageAgent.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("plan: serialization failed during %s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// ValidationCause tags the kind of structural failure a ValidationError
// sub-cause represents.
type ValidationCause string

const (
	CauseUnconnectedPort  ValidationCause = "unconnected-port"
	CauseMissingOutput    ValidationCause = "missing-output"
	CauseCycle            ValidationCause = "cycle"
	CauseDanglingStream   ValidationCause = "dangling-stream"
	CauseNonInputRoot     ValidationCause = "non-input-root"
	CauseOIOTopology      ValidationCause = "oio-topology"
	CauseProcessingMode   ValidationCause = "processing-mode"
	CausePartitioner      ValidationCause = "partitioner"
	CauseCheckpointWindow ValidationCause = "checkpoint-window"
)

// ValidationFailure is a single structural failure found during validate().
type ValidationFailure struct {
	Cause    ValidationCause
	Operator string
	Message  string
	Cycle    []string // populated only when Cause == CauseCycle
}

// ValidationError collects every ValidationFailure found by validate().
// The validator stops each pass at first failure within that pass but the
// aggregate type supports callers that want every sub-cause from a single
// run printed together.
type ValidationError struct {
	Failures []ValidationFailure
}

func (e *ValidationError) Error() string {
	if len(e.Failures) == 1 {
		f := e.Failures[0]
		return fmt.Sprintf("plan: validation failed (%s): %s", f.Cause, f.Message)
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("(%s) %s", f.Cause, f.Message))
	}
	return fmt.Sprintf("plan: validation failed with %d errors: %s", len(e.Failures), strings.Join(parts, "; "))
}

func singleValidationError(cause ValidationCause, operator, message string, cycle []string) *ValidationError {
	return &ValidationError{Failures: []ValidationFailure{{
		Cause:    cause,
		Operator: operator,
		Message:  message,
		Cycle:    cycle,
	}}}
}
