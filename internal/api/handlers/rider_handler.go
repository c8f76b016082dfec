package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocomet/delivery-dispatch/internal/api/dto"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/gocomet/delivery-dispatch/internal/service/directory"
	"github.com/google/uuid"
)

// ListRiders handles GET /v1/riders
func (h *Handlers) ListRiders(c *gin.Context) {
	riders, err := h.Directory.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, riders)
}

// GetRider handles GET /v1/riders/:id
func (h *Handlers) GetRider(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	r, err := h.Directory.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateRider handles POST /v1/riders
func (h *Handlers) CreateRider(c *gin.Context) {
	var req dto.CreateRiderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	r, err := h.Directory.Create(c.Request.Context(), directory.CreateInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// ReplaceRider handles PUT /v1/riders/:id
func (h *Handlers) ReplaceRider(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.ReplaceRiderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.update(c, id, req.Patch())
}

// PatchRider handles PATCH /v1/riders/:id
func (h *Handlers) PatchRider(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.PatchRiderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.update(c, id, req.Patch())
}

func (h *Handlers) update(c *gin.Context, id uuid.UUID, patch rider.Patch) {
	r, err := h.Directory.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteRider handles DELETE /v1/riders/:id
func (h *Handlers) DeleteRider(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Directory.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateRiderStatus handles PATCH /v1/riders/:id/status
func (h *Handlers) UpdateRiderStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateRiderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := h.Directory.SetStatus(c.Request.Context(), id, rider.Status(req.Status)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rider_id": id, "status": req.Status})
}

// AddRating handles POST /v1/riders/:id/ratings
func (h *Handlers) AddRating(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.AddRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	rt, err := h.Directory.AddRating(c.Request.Context(), id, *req.Score, req.Feedback)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rt)
}

// ListRatings handles GET /v1/riders/:id/ratings
func (h *Handlers) ListRatings(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	summary, err := h.Directory.ListRatings(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
