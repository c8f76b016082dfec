package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocomet/delivery-dispatch/internal/api/handlers"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// SetupRoutes configures all API routes. metricsHandler may be nil.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, nrApp *newrelic.Application, metricsHandler http.Handler) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	r.GET("/health", h.Health)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// WebSocket connection
		v1.GET("/ws", h.HandleWebSocket)

		riders := v1.Group("/riders")
		{
			riders.GET("", h.ListRiders)
			riders.POST("", h.CreateRider)
			riders.GET("/:id", h.GetRider)
			riders.PUT("/:id", h.ReplaceRider)
			riders.PATCH("/:id", h.PatchRider)
			riders.DELETE("/:id", h.DeleteRider)
			riders.PATCH("/:id/status", h.UpdateRiderStatus)
			riders.POST("/:id/ratings", h.AddRating)
			riders.GET("/:id/ratings", h.ListRatings)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("/:id", h.GetOrder)
			orders.GET("/:id/status", h.GetOrderStatus)
			orders.PUT("/:id/status", h.UpdateOrderStatus)
			orders.PUT("/:id/confirm-delivery", h.ConfirmDelivery)
			orders.POST("/:id/cancel", h.CancelOrder)
		}

		v1.POST("/dispatch", h.RunDispatch)

		v1.POST("/communications", h.SendMessage)
		v1.GET("/customers/:id/communications", h.ListMessages)

		analytics := v1.Group("/analytics")
		{
			analytics.GET("", h.GetAnalytics)
			analytics.GET("/deliveries", h.GetTotalDeliveries)
			analytics.GET("/average-duration", h.GetAverageDuration)
			analytics.GET("/average-rating", h.GetAverageRating)
			analytics.GET("/total-cost", h.GetTotalCost)
		}
	}
}
