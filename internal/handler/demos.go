package handler

import (
	"net/http"

	"github.com/aitools/aitools/internal/demo"
	"github.com/aitools/aitools/internal/models"
)

// DemosHandler serves the rendered demo cards.
type DemosHandler struct {
	loader *demo.Loader
}

func NewDemosHandler(loader *demo.Loader) *DemosHandler {
	return &DemosHandler{loader: loader}
}

// List handles GET /api/v1/demos. Failed tools appear as error cards.
func (h *DemosHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.loader.Load(r.Context())
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, "render demos: "+err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, models.DemosResponse{
		Status: "success",
		Count:  len(cards),
		Cards:  cards,
	})
}
