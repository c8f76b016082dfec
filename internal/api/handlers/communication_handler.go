package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocomet/delivery-dispatch/internal/api/dto"
	"github.com/google/uuid"
)

// SendMessage handles POST /v1/communications
func (h *Handlers) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	msg, err := h.Communications.Send(c.Request.Context(), customerID, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMessages handles GET /v1/customers/:id/communications
func (h *Handlers) ListMessages(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	msgs, err := h.Communications.List(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
