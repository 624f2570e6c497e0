package models

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Rank orders priorities Low < Medium < High.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusDone
}

type Task struct {
	ID                 uuid.UUID `json:"id"`
	ProjectID          uuid.UUID `json:"projectId"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	AssignedMemberName *string   `json:"assignedMemberName"`
	Priority           Priority  `json:"priority"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Active reports whether the task counts against its assignee's capacity.
func (t *Task) Active() bool {
	return t.Status != StatusDone
}

// Movable reports whether automatic reassignment may take the task away from its assignee.
func (t *Task) Movable() bool {
	return t.Active() && t.Priority != PriorityHigh
}

func (t *Task) AssigneeName() string {
	if t.AssignedMemberName == nil {
		return ""
	}
	return *t.AssignedMemberName
}
