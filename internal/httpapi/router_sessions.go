package httpapi

import (
	"net/http"
	"strings"
)

func (r *router) handleSessionStats(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, r.deps.Sessions.Stats())
}

func (r *router) handleSessionByID(w http.ResponseWriter, req *http.Request) {
	sessionID := strings.TrimPrefix(req.URL.Path, "/api/v1/sessions/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown session path"})
		return
	}
	if req.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if !r.deps.Sessions.Delete(sessionID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	r.deps.Logger.Info("session cleared", "session_id", sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session_id": sessionID})
}
