package handlers

import (
	"time"

	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/dimitrije/taskflow-api/internal/rebalance"
	"github.com/dimitrije/taskflow-api/pkg/dto"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toTeamResponse(t *models.Team) dto.TeamResponse {
	members := make([]dto.MemberResponse, len(t.Members))
	for i, m := range t.Members {
		members[i] = dto.MemberResponse{Name: m.Name, Role: m.Role, Capacity: m.Capacity}
	}
	return dto.TeamResponse{
		ID:        t.ID,
		Name:      t.Name,
		OwnerID:   t.OwnerID,
		Members:   members,
		CreatedAt: formatTime(t.CreatedAt),
		UpdatedAt: formatTime(t.UpdatedAt),
	}
}

func toProjectResponse(p *models.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          p.ID,
		TeamID:      p.TeamID,
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func toTaskResponse(t *models.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:                 t.ID,
		ProjectID:          t.ProjectID,
		Title:              t.Title,
		Description:        t.Description,
		AssignedMemberName: t.AssignedMemberName,
		Priority:           string(t.Priority),
		Status:             string(t.Status),
		CreatedAt:          formatTime(t.CreatedAt),
		UpdatedAt:          formatTime(t.UpdatedAt),
	}
}

func toTaskResponses(tasks []models.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = toTaskResponse(&tasks[i])
	}
	return out
}

func toActivityResponses(logs []models.ActivityLog) []dto.ActivityLogResponse {
	out := make([]dto.ActivityLogResponse, len(logs))
	for i, l := range logs {
		out[i] = dto.ActivityLogResponse{
			ID:             l.ID,
			TaskID:         l.TaskID,
			ProjectID:      l.ProjectID,
			TaskTitle:      l.TaskTitle,
			Message:        l.Message,
			FromMemberName: l.FromMemberName,
			ToMemberName:   l.ToMemberName,
			CreatedAt:      formatTime(l.CreatedAt),
		}
	}
	return out
}

func toWorkloadResponses(loads []rebalance.Load) []dto.MemberWorkloadResponse {
	out := make([]dto.MemberWorkloadResponse, len(loads))
	for i, l := range loads {
		out[i] = dto.MemberWorkloadResponse{
			Name:         l.Name,
			Role:         l.Role,
			Capacity:     l.Capacity,
			CurrentTasks: l.Active,
			Available:    l.Available(),
		}
	}
	return out
}
