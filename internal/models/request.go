package models

import (
	"fmt"

	"github.com/aitools/aitools/internal/tools"
)

// InvokeRequest for POST /api/v1/tools/{name}/invoke
type InvokeRequest struct {
	Arguments map[string]any `json:"arguments"`
	Mode      string         `json:"mode,omitempty"` // "live" | "demo"
	TimeoutMs int            `json:"timeoutMs,omitempty"`
}

// SetDefaults fills the mode from the server default and clamps the timeout.
func (r *InvokeRequest) SetDefaults(defaultMode tools.Mode) {
	if r.Mode == "" {
		r.Mode = string(defaultMode)
	}
	if r.Arguments == nil {
		r.Arguments = map[string]any{}
	}
	if r.TimeoutMs < 0 {
		r.TimeoutMs = 0
	}
	if r.TimeoutMs > 60000 {
		r.TimeoutMs = 60000
	}
}

// ParsedMode validates Mode.
func (r *InvokeRequest) ParsedMode() (tools.Mode, error) {
	m, err := tools.ParseMode(r.Mode)
	if err != nil {
		return "", fmt.Errorf("invalid mode: %w", err)
	}
	return m, nil
}

// ChatRequest for POST /api/v1/chat
type ChatRequest struct {
	Prompt  string `json:"prompt"`
	Timeout int    `json:"timeout"` // seconds
}

func (r *ChatRequest) SetDefaults() {
	if r.Timeout == 0 {
		r.Timeout = 120
	}
	if r.Timeout < 10 {
		r.Timeout = 10
	}
	if r.Timeout > 600 {
		r.Timeout = 600
	}
}
