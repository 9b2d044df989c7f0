package models

import (
	"github.com/aitools/aitools/internal/agent"
	"github.com/aitools/aitools/internal/catalog"
	"github.com/aitools/aitools/internal/demo"
	"github.com/aitools/aitools/internal/tools"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Mode    string            `json:"mode"`
	Tools   int               `json:"tools"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ToolInfo is a descriptor with its registry-site metadata.
type ToolInfo struct {
	Descriptor tools.Descriptor `json:"descriptor"`
	Catalog    *catalog.Item    `json:"catalog,omitempty"`
}

// ToolListResponse is returned by GET /api/v1/tools
type ToolListResponse struct {
	Status string     `json:"status"`
	Count  int        `json:"count"`
	Tools  []ToolInfo `json:"tools"`
}

// InvokeResponse is returned by POST /api/v1/tools/{name}/invoke
type InvokeResponse struct {
	Status string       `json:"status"`
	Mode   string       `json:"mode"`
	Result tools.Result `json:"result"`
}

// DemosResponse is returned by GET /api/v1/demos
type DemosResponse struct {
	Status string      `json:"status"`
	Count  int         `json:"count"`
	Cards  []demo.Card `json:"cards"`
}

// ChatResponse is returned by POST /api/v1/chat
type ChatResponse struct {
	Status string      `json:"status"`
	Prompt string      `json:"prompt"`
	Reply  agent.Reply `json:"reply"`
}
