package handlers

import (
	"strconv"

	"github.com/dimitrije/taskflow-api/internal/middleware"
	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/dimitrije/taskflow-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type TeamHandler struct {
	teamService TeamServiceInterface
	logger      *zap.Logger
}

func NewTeamHandler(teamService TeamServiceInterface, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{teamService: teamService, logger: logger}
}

func toMembers(reqs []dto.MemberRequest) ([]models.Member, string) {
	members := make([]models.Member, len(reqs))
	for i, r := range reqs {
		member, msg := toMember(r)
		if msg != "" {
			return nil, msg
		}
		members[i] = member
	}
	return members, ""
}

func toMember(r dto.MemberRequest) (models.Member, string) {
	if r.Capacity == nil {
		return models.Member{}, "member capacity is required"
	}
	return models.Member{Name: r.Name, Role: r.Role, Capacity: *r.Capacity}, ""
}

func (h *TeamHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	members, msg := toMembers(req.Members)
	if msg != "" {
		c.BadRequest(msg)
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), userID, req.Name, members)
	if err != nil {
		respondError(c, h.logger, err, "failed to create team")
		return
	}

	_ = c.JSON(201, toTeamResponse(team))
}

func (h *TeamHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teams, err := h.teamService.ListOwned(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get teams")
		return
	}

	response := make([]dto.TeamResponse, len(teams))
	for i := range teams {
		response[i] = toTeamResponse(&teams[i])
	}

	_ = c.JSON(200, response)
}

func (h *TeamHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	team, err := h.teamService.GetOwned(c.Request.Context(), teamID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get team")
		return
	}

	_ = c.JSON(200, toTeamResponse(team))
}

func (h *TeamHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.UpdateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	var members []models.Member
	if req.Members != nil {
		var msg string
		if members, msg = toMembers(req.Members); msg != "" {
			c.BadRequest(msg)
			return
		}
	}

	team, err := h.teamService.Update(c.Request.Context(), teamID, userID, req.Name, members)
	if err != nil {
		respondError(c, h.logger, err, "failed to update team")
		return
	}

	_ = c.JSON(200, toTeamResponse(team))
}

func (h *TeamHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	if err := h.teamService.Delete(c.Request.Context(), teamID, userID); err != nil {
		respondError(c, h.logger, err, "failed to delete team")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "team deleted"})
}

func (h *TeamHandler) AddMember(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.MemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	member, msg := toMember(req)
	if msg != "" {
		c.BadRequest(msg)
		return
	}

	team, err := h.teamService.AddMember(c.Request.Context(), teamID, userID, member)
	if err != nil {
		respondError(c, h.logger, err, "failed to add member")
		return
	}

	_ = c.JSON(201, toTeamResponse(team))
}

func (h *TeamHandler) UpdateMember(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	index, err := strconv.Atoi(c.Param("memberIndex"))
	if err != nil || index < 0 {
		c.BadRequest("invalid member index")
		return
	}

	var req dto.MemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	member, msg := toMember(req)
	if msg != "" {
		c.BadRequest(msg)
		return
	}

	team, err := h.teamService.UpdateMember(c.Request.Context(), teamID, userID, index, member)
	if err != nil {
		respondError(c, h.logger, err, "failed to update member")
		return
	}

	_ = c.JSON(200, toTeamResponse(team))
}

func (h *TeamHandler) DeleteMember(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	index, err := strconv.Atoi(c.Param("memberIndex"))
	if err != nil || index < 0 {
		c.BadRequest("invalid member index")
		return
	}

	team, err := h.teamService.DeleteMember(c.Request.Context(), teamID, userID, index)
	if err != nil {
		respondError(c, h.logger, err, "failed to remove member")
		return
	}

	_ = c.JSON(200, toTeamResponse(team))
}
