package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iyannm/word-fuse/internal/app"
)

// Handler upgrades HTTP requests to WebSocket connections and hands them to
// the hub. Every connection gets a fresh connection id; rooms and players
// are established through actions on the socket itself.
type Handler struct {
	hub      *app.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *app.Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins; the deployment fronts this with a
				// reverse proxy that pins the origin
				return true
			},
		},
		logger: logger,
	}
}

// Handle returns the gin handler for the WebSocket endpoint
func (h *Handler) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Error().Err(err).Msg("websocket upgrade failed")
			return
		}

		connID := uuid.NewString()
		client := NewClient(conn, h.hub, connID, h.logger)

		h.logger.Info().Str("connId", connID).Str("remote", c.ClientIP()).Msg("websocket connected")
		client.Run()
	}
}
