package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/gocomet/delivery-dispatch/pkg/errors"
	"github.com/gocomet/delivery-dispatch/pkg/logger"
)

// RunDispatch handles POST /v1/dispatch. With ?dry_run=true the pairing is
// computed and returned without assigning anything.
func (h *Handlers) RunDispatch(c *gin.Context) {
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("dry_run must be a boolean", err))
		return
	}

	if dryRun {
		plan, err := h.Dispatch.Plan(c.Request.Context())
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, plan)
		return
	}

	res, err := h.Dispatch.Run(c.Request.Context())
	switch {
	case err != nil && res != nil:
		// aborted part way; the committed pairs stay in place and are reported
		appErr := apperrors.GetAppError(err)
		h.Logger.Error("Dispatch run aborted", logger.Stringer("run_id", res.RunID), logger.Err(err))
		c.JSON(appErr.Status, gin.H{"code": appErr.Code, "message": appErr.Message, "result": res})
	case err != nil:
		h.respondError(c, err)
	default:
		c.JSON(http.StatusOK, res)
	}
}
