package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aitools/aitools/internal/agent"
	"github.com/aitools/aitools/internal/middleware"
	"github.com/aitools/aitools/internal/models"
)

// ChatHandler handles POST /api/v1/chat
type ChatHandler struct {
	agent *agent.Agent
}

func NewChatHandler(a *agent.Agent) *ChatHandler {
	return &ChatHandler{agent: a}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults()

	if req.Prompt == "" {
		models.WriteError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(req.Timeout)*time.Second)
	defer cancel()

	reply, err := h.agent.Chat(ctx, req.Prompt, middleware.GetAPIKey(r))
	switch {
	case errors.Is(err, agent.ErrPromptRejected):
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, agent.ErrBudgetExceeded):
		models.WriteError(w, http.StatusTooManyRequests, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		models.WriteError(w, http.StatusGatewayTimeout, "chat timed out")
		return
	case err != nil:
		log.Error().Err(err).Msg("chat failed")
		models.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	models.WriteJSON(w, http.StatusOK, models.ChatResponse{
		Status: "success",
		Prompt: req.Prompt,
		Reply:  reply,
	})
}
