package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/aitools/aitools/internal/schema"
)

// ErrorKind classifies why an invocation failed.
type ErrorKind string

const (
	// KindValidation: the arguments do not satisfy the input schema. No
	// upstream call was made.
	KindValidation ErrorKind = "validation"
	// KindUpstream: network failure, timeout or non-success response.
	KindUpstream ErrorKind = "upstream"
	// KindShape: the result does not match the declared output shape.
	KindShape ErrorKind = "shape"
	// KindExecution: a failure the tool declares itself, e.g. division by zero.
	KindExecution ErrorKind = "execution"
	KindNotFound  ErrorKind = "not_found"
	KindInternal  ErrorKind = "internal"
)

var (
	ErrDuplicateTool = errors.New("tool already registered")
	ErrInvalidTool   = errors.New("invalid tool")
)

// ExecutionError is the structured failure returned to the invocation runtime.
type ExecutionError struct {
	Kind    ErrorKind           `json:"kind"`
	Message string              `json:"message"`
	Fields  []schema.FieldError `json:"fields,omitempty"`
	cause   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ExecutionError) Unwrap() error { return e.cause }

// Failf builds a declared execution error for adapters to return.
func Failf(format string, args ...any) *ExecutionError {
	return &ExecutionError{Kind: KindExecution, Message: fmt.Sprintf(format, args...)}
}

// invalidField reports an argument that passed the schema but cannot be used.
func invalidField(path, reason string) *ExecutionError {
	fe := schema.FieldError{Path: path, Reason: reason}
	return &ExecutionError{
		Kind:    KindValidation,
		Message: "invalid arguments: " + fe.String(),
		Fields:  []schema.FieldError{fe},
	}
}

// classify maps any error from validation or an adapter to an ExecutionError.
// Errors the adapter did not classify itself are treated as upstream failures.
func classify(err error) *ExecutionError {
	var xerr *ExecutionError
	if errors.As(err, &xerr) {
		return xerr
	}
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return &ExecutionError{Kind: KindValidation, Message: verr.Error(), Fields: verr.Fields, cause: err}
	}
	var serr *schema.ShapeError
	if errors.As(err, &serr) {
		return &ExecutionError{Kind: KindShape, Message: serr.Error(), cause: err}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ExecutionError{Kind: KindUpstream, Message: "upstream call timed out", cause: err}
	case errors.Is(err, context.Canceled):
		return &ExecutionError{Kind: KindUpstream, Message: "invocation canceled", cause: err}
	}
	return &ExecutionError{Kind: KindUpstream, Message: err.Error(), cause: err}
}
