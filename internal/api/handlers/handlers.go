package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocomet/delivery-dispatch/internal/api/dto"
	"github.com/gocomet/delivery-dispatch/internal/service/analytics"
	"github.com/gocomet/delivery-dispatch/internal/service/communication"
	"github.com/gocomet/delivery-dispatch/internal/service/directory"
	"github.com/gocomet/delivery-dispatch/internal/service/dispatch"
	"github.com/gocomet/delivery-dispatch/internal/service/lifecycle"
	"github.com/gocomet/delivery-dispatch/internal/store"
	apperrors "github.com/gocomet/delivery-dispatch/pkg/errors"
	"github.com/gocomet/delivery-dispatch/pkg/logger"
	"github.com/gocomet/delivery-dispatch/pkg/websocket"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Store          store.Store
	Directory      *directory.Service
	Lifecycle      *lifecycle.Service
	Dispatch       *dispatch.Engine
	Analytics      *analytics.Reporter
	Communications *communication.Service
	Hub            *websocket.Hub
	Upgrader       gorilla.Upgrader
	Logger         *logger.Logger
}

// respondError writes an AppError as {"code","message"}. Anything else is
// reported as an internal error and logged.
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed",
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.Err(err),
		)
	}
	c.JSON(appErr.Status, dto.ErrorResponse{Code: appErr.Code, Message: appErr.Message})
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	h.respondError(c, apperrors.BadRequest("Invalid request payload", err))
}

// pathID parses the :id path parameter, writing a 400 when malformed
func (h *Handlers) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid id", err))
		return uuid.Nil, false
	}
	return id, true
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	status := gin.H{"status": "healthy", "store": "up"}
	code := http.StatusOK
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		status = gin.H{"status": "degraded", "store": "down"}
		code = http.StatusServiceUnavailable
	}
	if h.Hub != nil {
		status["websocket_connections"] = h.Hub.GetActiveConnections()
	}
	c.JSON(code, status)
}
