package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aitools/aitools/internal/catalog"
	"github.com/aitools/aitools/internal/middleware"
	"github.com/aitools/aitools/internal/models"
	"github.com/aitools/aitools/internal/tools"
)

const maxInvokeBody = 1 << 20

// ToolsHandler serves the registry.
type ToolsHandler struct {
	registry    *tools.Registry
	catalog     *catalog.Catalog
	defaultMode tools.Mode
}

func NewToolsHandler(registry *tools.Registry, cat *catalog.Catalog, defaultMode tools.Mode) *ToolsHandler {
	return &ToolsHandler{registry: registry, catalog: cat, defaultMode: defaultMode}
}

// List handles GET /api/v1/tools
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	descs := h.registry.List()
	infos := make([]models.ToolInfo, len(descs))
	for i, d := range descs {
		infos[i] = h.info(d)
	}
	models.WriteJSON(w, http.StatusOK, models.ToolListResponse{
		Status: "success",
		Count:  len(infos),
		Tools:  infos,
	})
}

// Get handles GET /api/v1/tools/{name}
func (h *ToolsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	t, ok := h.registry.Lookup(name)
	if !ok {
		models.WriteError(w, http.StatusNotFound, "tool "+name+" is not registered")
		return
	}
	models.WriteJSON(w, http.StatusOK, h.info(t.Descriptor()))
}

// Invoke handles POST /api/v1/tools/{name}/invoke. The status code follows
// the error kind of the result.
func (h *ToolsHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	var req models.InvokeRequest
	body := http.MaxBytesReader(w, r.Body, maxInvokeBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults(h.defaultMode)
	mode, err := req.ParsedMode()
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	inv := tools.NewInvocation(chi.URLParam(r, "name"), req.Arguments, mode)
	inv.Caller = middleware.GetAPIKey(r)
	res := h.registry.Invoke(ctx, inv)

	status, code := "success", http.StatusOK
	if res.Error != nil {
		status, code = "error", models.StatusForKind(res.Error.Kind)
	}
	models.WriteJSON(w, code, models.InvokeResponse{
		Status: status,
		Mode:   string(mode),
		Result: res,
	})
}

func (h *ToolsHandler) info(d tools.Descriptor) models.ToolInfo {
	info := models.ToolInfo{Descriptor: d}
	if h.catalog != nil {
		if it, ok := h.catalog.Lookup(d.Name()); ok {
			info.Catalog = &it
		}
	}
	return info
}
