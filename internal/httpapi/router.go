package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jakco/support-router/internal/config"
	"github.com/jakco/support-router/internal/content"
	"github.com/jakco/support-router/internal/engine"
	"github.com/jakco/support-router/internal/session"
)

type Dependencies struct {
	Config   config.Config
	Engine   *engine.Engine
	Sessions *session.Memory
	Content  *content.Store
	Logger   *slog.Logger
	Version  string
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	mux.HandleFunc("/api/v1/route", rt.handleRoute)
	mux.HandleFunc("/api/v1/sessions/stats", rt.handleSessionStats)
	mux.HandleFunc("/api/v1/sessions/", rt.handleSessionByID)
	mux.HandleFunc("/api/v1/chat/ws", rt.handleChatWS)
	return mux
}

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if err := r.deps.Content.Ping(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "support-router",
		"version":     r.deps.Version,
		"environment": r.deps.Config.Environment,
		"thresholds": map[string]any{
			"direct_escalation_days":  r.deps.Config.DirectEscalationDays,
			"opco_escalation_months":  r.deps.Config.TypeBEscalationMonths,
			"cpf_review_gate_days":    r.deps.Config.TypeAReviewGateDays,
			"session_ttl_seconds":     r.deps.Config.SessionTTLSec,
			"session_turn_limit":      r.deps.Config.SessionTurnLimit,
			"decision_cache_size":     r.deps.Config.DecisionCacheSize,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
