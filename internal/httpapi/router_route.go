package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jakco/support-router/internal/engine"
)

type routeRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type routeResponse struct {
	SessionID    string                `json:"session_id"`
	Category     engine.Category       `json:"category"`
	SearchQuery  string                `json:"search_query"`
	Escalate     bool                  `json:"escalate"`
	Priority     engine.Priority       `json:"priority"`
	BlockHints   []string              `json:"block_hints"`
	Instructions string                `json:"instructions"`
	Facts        engine.ExtractedFacts `json:"facts"`
	Blocks       []engine.Block        `json:"blocks,omitempty"`
	Cached       bool                  `json:"cached"`
	ProcessingMS float64               `json:"processing_ms"`
}

func (r *router) handleRoute(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var payload routeRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	result := r.deps.Engine.Route(req.Context(), engine.Request{
		Message:   payload.Message,
		SessionID: payload.SessionID,
	})
	writeJSON(w, http.StatusOK, toRouteResponse(result))
}

func toRouteResponse(result engine.Result) routeResponse {
	return routeResponse{
		SessionID:    result.SessionID,
		Category:     result.Decision.Category,
		SearchQuery:  result.Decision.SearchQuery,
		Escalate:     result.Decision.Escalate,
		Priority:     result.Decision.Priority,
		BlockHints:   result.Decision.BlockHints,
		Instructions: result.Decision.Instructions,
		Facts:        result.Decision.Facts,
		Blocks:       result.Blocks,
		Cached:       result.Cached,
		ProcessingMS: float64(result.Elapsed.Microseconds()) / 1000.0,
	}
}
