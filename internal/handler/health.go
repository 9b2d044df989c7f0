package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/aitools/aitools/internal/bootstrap"
	"github.com/aitools/aitools/internal/models"
	"github.com/aitools/aitools/internal/tools"
)

// HealthHandler handles GET /health with dependency checks
type HealthHandler struct {
	version string
	mode    tools.Mode
	tools   int
	checks  map[string]bootstrap.Pinger
}

func NewHealthHandler(version string, mode tools.Mode, toolCount int, checks map[string]bootstrap.Pinger) *HealthHandler {
	return &HealthHandler{version: version, mode: mode, tools: toolCount, checks: checks}
}

// Health handles GET /health. Any failed check reports degraded with 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	// Use a short timeout for health checks so they don't block
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			checks[name] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks[name] = "ok"
		}
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: h.version,
		Mode:    string(h.mode),
		Tools:   h.tools,
		Checks:  checks,
	})
}
