package dto

import "github.com/google/uuid"

type CreateProjectRequest struct {
	TeamID      string `json:"teamId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	TeamID      *string `json:"teamId,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	TeamID      uuid.UUID `json:"teamId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// MemberWorkloadResponse is one member's load inside a project.
type MemberWorkloadResponse struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	Capacity     int    `json:"capacity"`
	CurrentTasks int    `json:"currentTasks"`
	Available    int    `json:"available"`
}
