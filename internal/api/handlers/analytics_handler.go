package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocomet/delivery-dispatch/internal/api/dto"
)

// GetAnalytics handles GET /v1/analytics
func (h *Handlers) GetAnalytics(c *gin.Context) {
	rep, err := h.Analytics.Report(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GetTotalDeliveries handles GET /v1/analytics/deliveries
func (h *Handlers) GetTotalDeliveries(c *gin.Context) {
	n, err := h.Analytics.TotalDeliveries(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MetricResponse{Metric: "total_deliveries", Value: n})
}

// GetAverageDuration handles GET /v1/analytics/average-duration
func (h *Handlers) GetAverageDuration(c *gin.Context) {
	avg, err := h.Analytics.AverageDeliveryDuration(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MetricResponse{Metric: "average_delivery_duration_seconds", Value: avg})
}

// GetAverageRating handles GET /v1/analytics/average-rating
func (h *Handlers) GetAverageRating(c *gin.Context) {
	avg, err := h.Analytics.AverageCustomerRating(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MetricResponse{Metric: "average_customer_rating", Value: avg})
}

// GetTotalCost handles GET /v1/analytics/total-cost
func (h *Handlers) GetTotalCost(c *gin.Context) {
	total, err := h.Analytics.TotalDeliveryCost(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MetricResponse{Metric: "total_delivery_cost", Value: total})
}
