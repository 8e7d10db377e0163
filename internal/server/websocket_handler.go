package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocketHandler admits and upgrades websocket connections
type WebSocketHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. allowOrigin decides the CheckOrigin policy.
func NewWebSocketHandler(hub *Hub, allowOrigin func(origin string) bool) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowOrigin == nil {
					return true
				}
				return allowOrigin(origin)
			},
		},
	}
}

// Handle upgrades HTTP to WebSocket
func (h *WebSocketHandler) Handle(c *gin.Context) {
	identity := Admit(ExtractCredentials(c.Request))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.logger.Error("websocket upgrade failed", nil, err)
		return
	}

	client := NewClient(h.hub, conn, identity, h.hub.opts.SendBuffer)
	if !h.hub.Register(client) {
		conn.Close()
	}
}
