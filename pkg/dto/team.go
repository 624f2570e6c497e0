package dto

import "github.com/google/uuid"

type MemberRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Capacity *int   `json:"capacity"`
}

type CreateTeamRequest struct {
	Name    string          `json:"name"`
	Members []MemberRequest `json:"members"`
}

type UpdateTeamRequest struct {
	Name    *string         `json:"name,omitempty"`
	Members []MemberRequest `json:"members,omitempty"`
}

type MemberResponse struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Capacity int    `json:"capacity"`
}

type TeamResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	OwnerID   uuid.UUID        `json:"ownerId"`
	Members   []MemberResponse `json:"members"`
	CreatedAt string           `json:"createdAt"`
	UpdatedAt string           `json:"updatedAt"`
}
