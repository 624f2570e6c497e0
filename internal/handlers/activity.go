package handlers

import (
	"strconv"

	"github.com/dimitrije/taskflow-api/internal/middleware"
	"github.com/dimitrije/taskflow-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activityService ActivityServiceInterface
	logger          *zap.Logger
}

func NewActivityHandler(activityService ActivityServiceInterface, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, logger: logger}
}

func (h *ActivityHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.BadRequest("invalid limit")
			return
		}
		limit = n
	}

	logs, err := h.activityService.List(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, h.logger, err, "failed to get activity logs")
		return
	}

	_ = c.JSON(200, dto.ActivityLogsResponse{Logs: toActivityResponses(logs)})
}
