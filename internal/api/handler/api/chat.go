// internal/api/handler/api/chat.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/prismfin/prism/internal/api/response"
	"github.com/prismfin/prism/internal/chat"
	"github.com/prismfin/prism/internal/core"
	"github.com/prismfin/prism/internal/metrics"
)

// ChatHandler forwards dashboard chat turns to the chat service. A nil
// service means no LLM provider is configured and the route answers 500.
type ChatHandler struct {
	svc     *chat.Service
	metrics *metrics.Registry
}

// NewChatHandler creates a chat handler.
func NewChatHandler(svc *chat.Service, reg *metrics.Registry) *ChatHandler {
	return &ChatHandler{svc: svc, metrics: reg}
}

// Post handles POST /api/v1/chat
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		response.Fail(w, core.WrapError(core.ErrConfigMissing, nil))
		return
	}

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, core.WrapError(core.ErrInvalidParam, err))
		return
	}

	resp, err := h.svc.Respond(r.Context(), req)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordChatTurn(h.svc.Provider(), "error", 0, 0)
		}
		response.Fail(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordChatTurn(h.svc.Provider(), "success",
			resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}

	response.JSON(w, http.StatusOK, resp)
}
