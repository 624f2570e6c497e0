package handlers

import (
	"github.com/dimitrije/taskflow-api/internal/middleware"
	"github.com/dimitrije/taskflow-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService DashboardServiceInterface
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService DashboardServiceInterface, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

func (h *DashboardHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	stats, err := h.dashboardService.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get dashboard")
		return
	}

	workload := make([]dto.WorkloadEntry, len(stats.Workload))
	for i, w := range stats.Workload {
		workload[i] = dto.WorkloadEntry{
			MemberName: w.MemberName,
			Count:      w.Count,
			Pending:    w.Pending,
			InProgress: w.InProgress,
			Done:       w.Done,
			Capacity:   w.Capacity,
		}
	}

	_ = c.JSON(200, dto.DashboardResponse{
		TotalProjects: stats.TotalProjects,
		TotalTasks:    stats.TotalTasks,
		Workload:      workload,
		ActivityLogs:  toActivityResponses(stats.RecentActivity),
	})
}
