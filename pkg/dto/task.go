package dto

import "github.com/google/uuid"

type CreateTaskRequest struct {
	ProjectID          string  `json:"projectId"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	AssignedMemberName *string `json:"assignedMemberName,omitempty"`
	Priority           string  `json:"priority,omitempty"`
	Status             string  `json:"status,omitempty"`
}

// UpdateTaskRequest is a partial update; an empty assignedMemberName unassigns the task.
type UpdateTaskRequest struct {
	Title              *string `json:"title,omitempty"`
	Description        *string `json:"description,omitempty"`
	AssignedMemberName *string `json:"assignedMemberName,omitempty"`
	Priority           *string `json:"priority,omitempty"`
	Status             *string `json:"status,omitempty"`
}

type TaskResponse struct {
	ID                 uuid.UUID `json:"id"`
	ProjectID          uuid.UUID `json:"projectId"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	AssignedMemberName *string   `json:"assignedMemberName"`
	Priority           string    `json:"priority"`
	Status             string    `json:"status"`
	CreatedAt          string    `json:"createdAt"`
	UpdatedAt          string    `json:"updatedAt"`
}

// ReassignRequest scopes a rebalance run. A missing or empty projectId means every
// project the caller owns.
type ReassignRequest struct {
	ProjectID *string `json:"projectId,omitempty"`
}

type ReassignResponse struct {
	Message string         `json:"message"`
	Tasks   []TaskResponse `json:"tasks"`
}
