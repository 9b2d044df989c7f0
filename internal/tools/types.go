package tools

import (
	"time"

	"github.com/google/uuid"
)

// Invocation is one request to run a tool. The runtime owns it.
type Invocation struct {
	ID        string         `json:"id"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Mode      Mode           `json:"mode"`
	// Caller identifies who asked, e.g. an API key or "cli". Audited hashed.
	Caller string `json:"-"`
}

// NewInvocation assigns a fresh invocation ID.
func NewInvocation(tool string, args map[string]any, mode Mode) Invocation {
	return Invocation{
		ID:        uuid.NewString(),
		Tool:      tool,
		Arguments: args,
		Mode:      mode,
	}
}

// Result is the outcome of an invocation. Exactly one of Output or Error is set.
// Fallback marks an output substituted for a failed upstream call.
type Result struct {
	InvocationID string          `json:"invocationId"`
	Tool         string          `json:"tool"`
	Output       any             `json:"output,omitempty"`
	Fallback     bool            `json:"fallback,omitempty"`
	Error        *ExecutionError `json:"error,omitempty"`
	Duration     time.Duration   `json:"-"`
	DurationMs   int64           `json:"durationMs"`
}

// OK reports whether the invocation produced an output.
func (r Result) OK() bool { return r.Error == nil }
