package handlers

import (
	"github.com/dimitrije/taskflow-api/internal/middleware"
	"github.com/dimitrije/taskflow-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService  ProjectServiceInterface
	workloadService WorkloadServiceInterface
	logger          *zap.Logger
}

func NewProjectHandler(projectService ProjectServiceInterface, workloadService WorkloadServiceInterface, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService:  projectService,
		workloadService: workloadService,
		logger:          logger,
	}
}

func (h *ProjectHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), userID, teamID, req.Title, req.Description)
	if err != nil {
		respondError(c, h.logger, err, "failed to create project")
		return
	}

	_ = c.JSON(201, toProjectResponse(project))
}

func (h *ProjectHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var teamID *uuid.UUID
	if raw := c.QueryParam("teamId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.BadRequest("invalid team id")
			return
		}
		teamID = &id
	}

	projects, err := h.projectService.ListOwned(c.Request.Context(), userID, teamID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get projects")
		return
	}

	response := make([]dto.ProjectResponse, len(projects))
	for i := range projects {
		response[i] = toProjectResponse(&projects[i])
	}

	_ = c.JSON(200, response)
}

func (h *ProjectHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	project, err := h.projectService.GetOwned(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get project")
		return
	}

	_ = c.JSON(200, toProjectResponse(project))
}

func (h *ProjectHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	var teamID *uuid.UUID
	if req.TeamID != nil {
		id, err := uuid.Parse(*req.TeamID)
		if err != nil {
			c.BadRequest("invalid team id")
			return
		}
		teamID = &id
	}

	project, err := h.projectService.Update(c.Request.Context(), projectID, userID, req.Title, req.Description, teamID)
	if err != nil {
		respondError(c, h.logger, err, "failed to update project")
		return
	}

	_ = c.JSON(200, toProjectResponse(project))
}

func (h *ProjectHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), projectID, userID); err != nil {
		respondError(c, h.logger, err, "failed to delete project")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "project deleted"})
}

// Members returns the current workload of each member of the project's team.
func (h *ProjectHandler) Members(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	loads, err := h.workloadService.Snapshot(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get project members")
		return
	}

	_ = c.JSON(200, toWorkloadResponses(loads))
}
