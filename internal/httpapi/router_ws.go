package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/jakco/support-router/internal/engine"
)

// The websocket endpoint serves the embedded chat widget; same-origin
// enforcement happens at the edge proxy, not here.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type wsMessage struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (r *router) handleChatWS(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.deps.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// The first decision on an anonymous connection pins the session id;
	// subsequent frames reuse it unless the client sends its own.
	sessionID := ""
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.deps.Logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		if msg.SessionID == "" {
			msg.SessionID = sessionID
		}

		result := r.deps.Engine.Route(req.Context(), engine.Request{
			Message:   msg.Message,
			SessionID: msg.SessionID,
		})
		sessionID = result.SessionID

		if err := conn.WriteJSON(toRouteResponse(result)); err != nil {
			r.deps.Logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}
