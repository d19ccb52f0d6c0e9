package api

import (
	"log/slog"
	"net/http"
	"slices"

	"parking-lot-manager/internal/infra/notifier"
	"parking-lot-manager/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type EventsHandler struct {
	hub      *notifier.Hub
	upgrader websocket.Upgrader
}

func NewEventsHandler(hub *notifier.Hub, cfg config.Config) *EventsHandler {
	allowed := cfg.CORS.AllowOrigins
	return &EventsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
			},
		},
	}
}

// @Summary Event stream
// @Description WebSocket stream of reservation, catalog and job events (admin only)
// @Tags admin
// @Security BearerAuth
// @Success 101 "Switching Protocols"
// @Router /ws/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("websocket upgrade failed", "error", err.Error())
		c.Abort()
		return
	}
	h.hub.Serve(conn)
}
