package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocomet/delivery-dispatch/internal/api/dto"
	"github.com/gocomet/delivery-dispatch/internal/domain/order"
)

// GetOrder handles GET /v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	o, err := h.Lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// GetOrderStatus handles GET /v1/orders/:id/status
func (h *Handlers) GetOrderStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	view, err := h.Lifecycle.GetStatus(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateOrderStatus handles PUT /v1/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	o, err := h.Lifecycle.SetStatus(c.Request.Context(), id, order.Status(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ConfirmDelivery handles PUT /v1/orders/:id/confirm-delivery
func (h *Handlers) ConfirmDelivery(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	confirmation, err := h.Lifecycle.ConfirmDelivery(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmation)
}

// CancelOrder handles POST /v1/orders/:id/cancel
func (h *Handlers) CancelOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	o, err := h.Lifecycle.Cancel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
