package sync

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"artshop/pkg/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // demo storefront, same-origin not enforced
	},
}

// SessionLookup reports whether a session id is live and, if so, returns
// the payload to send right after the welcome message.
type SessionLookup func(id string) (initial any, ok bool)

// WSHandler subscribes a websocket to the events of the session named by
// the :id path parameter.
func WSHandler(hub *Hub, lookup SessionLookup, logger *zap.Logger) gin.HandlerFunc {
	log := logging.OrNop(logger).Named("ws")
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		initial, ok := lookup(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		// written before AddWS so the hub is not yet a concurrent writer
		_ = ws.WriteJSON(newWelcome("websocket", id, hub.Stats().WSClients))
		if initial != nil {
			if b, err := json.Marshal(initial); err == nil {
				_ = ws.WriteMessage(websocket.TextMessage, append(b, '\n'))
			}
		}

		hub.AddWS(id, ws)
		log.Info("client connected", zap.String("session_id", id))

		// subscribers only listen; reads detect the close
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		log.Info("client disconnected", zap.String("session_id", id))
	}
}
