package schema

import (
	"fmt"
	"strings"
)

// FieldError is one failed constraint.
type FieldError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	if e.Path == "" {
		return e.Reason
	}
	return e.Path + ": " + e.Reason
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid arguments: %s", strings.Join(parts, "; "))
}

// Has reports whether path failed.
func (e *ValidationError) Has(path string) bool {
	for _, f := range e.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}

// ShapeError means a value does not match its declared output shape.
type ShapeError struct {
	Err error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("output shape mismatch: %v", e.Err)
}

func (e *ShapeError) Unwrap() error { return e.Err }
