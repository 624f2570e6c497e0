package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dimitrije/taskflow-api/internal/middleware"
	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/dimitrije/taskflow-api/internal/services"
	"github.com/dimitrije/taskflow-api/internal/sse"
	"github.com/dimitrije/taskflow-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService     TaskServiceInterface
	workloadService WorkloadServiceInterface
	hub             HubInterface
	logger          *zap.Logger
}

func NewTaskHandler(taskService TaskServiceInterface, workloadService WorkloadServiceInterface, hub HubInterface, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:     taskService,
		workloadService: workloadService,
		hub:             hub,
		logger:          logger,
	}
}

func (h *TaskHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), userID, services.TaskInput{
		ProjectID:          projectID,
		Title:              req.Title,
		Description:        req.Description,
		AssignedMemberName: req.AssignedMemberName,
		Priority:           models.Priority(req.Priority),
		Status:             models.Status(req.Status),
	})
	if err != nil {
		respondError(c, h.logger, err, "failed to create task")
		return
	}

	h.hub.BroadcastTaskEvent(sse.EventTaskCreated, task.ProjectID, task.ID, task)

	_ = c.JSON(201, toTaskResponse(task))
}

func (h *TaskHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var projectID *uuid.UUID
	if raw := c.QueryParam("projectId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.BadRequest("invalid project id")
			return
		}
		projectID = &id
	}

	var assignee *string
	if raw := strings.TrimSpace(c.QueryParam("assignedMemberName")); raw != "" {
		assignee = &raw
	}

	tasks, err := h.taskService.List(c.Request.Context(), userID, projectID, assignee)
	if err != nil {
		respondError(c, h.logger, err, "failed to get tasks")
		return
	}

	_ = c.JSON(200, toTaskResponses(tasks))
}

func (h *TaskHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	task, err := h.taskService.GetOwned(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get task")
		return
	}

	_ = c.JSON(200, toTaskResponse(task))
}

func (h *TaskHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	upd := services.TaskUpdate{
		Title:              req.Title,
		Description:        req.Description,
		AssignedMemberName: req.AssignedMemberName,
	}
	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		upd.Priority = &p
	}
	if req.Status != nil {
		s := models.Status(*req.Status)
		upd.Status = &s
	}

	task, err := h.taskService.Update(c.Request.Context(), taskID, userID, upd)
	if err != nil {
		respondError(c, h.logger, err, "failed to update task")
		return
	}

	h.hub.BroadcastTaskEvent(sse.EventTaskUpdated, task.ProjectID, task.ID, task)

	_ = c.JSON(200, toTaskResponse(task))
}

func (h *TaskHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	ctx := c.Request.Context()

	task, err := h.taskService.GetOwned(ctx, taskID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to delete task")
		return
	}

	if err := h.taskService.Delete(ctx, taskID, userID); err != nil {
		respondError(c, h.logger, err, "failed to delete task")
		return
	}

	h.hub.BroadcastTaskEvent(sse.EventTaskDeleted, task.ProjectID, task.ID, nil)

	_ = c.JSON(200, map[string]string{"message": "task deleted"})
}

// Reassign rebalances one project, or every project of the caller when no projectId
// is given, and reports the tasks that changed hands.
func (h *TaskHandler) Reassign(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	// An empty body, chunked or not, means every project.
	var req dto.ReassignRequest
	if err := c.BindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.BadRequest("invalid request body")
		return
	}

	var projectID *uuid.UUID
	if req.ProjectID != nil && *req.ProjectID != "" {
		id, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			c.BadRequest("invalid project id")
			return
		}
		projectID = &id
	}

	moved, err := h.workloadService.Rebalance(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, h.logger.With(
			zap.String("user_id", userID.String()),
			zap.Int("moved", len(moved)),
		), err, "failed to reassign tasks")
		return
	}

	_ = c.JSON(200, dto.ReassignResponse{
		Message: fmt.Sprintf("Reassigned %d tasks", len(moved)),
		Tasks:   toTaskResponses(moved),
	})
}
