package handlers

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/gocomet/delivery-dispatch/pkg/errors"
	"github.com/gocomet/delivery-dispatch/pkg/logger"
	"github.com/gocomet/delivery-dispatch/pkg/websocket"
)

// HandleWebSocket handles GET /v1/ws?user_id=...&user_type=rider|customer|dashboard
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	userID := c.Query("user_id")
	userType := c.Query("user_type")

	switch userType {
	case websocket.UserTypeRider, websocket.UserTypeCustomer, websocket.UserTypeDashboard:
	default:
		h.respondError(c, apperrors.BadRequest("user_type must be rider, customer or dashboard", nil))
		return
	}
	if userID == "" {
		h.respondError(c, apperrors.BadRequest("user_id is required", nil))
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	client := websocket.NewClient(h.Hub, conn, userID, userType, h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
