package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is an append-only record of an assignment change.
type ActivityLog struct {
	ID             uuid.UUID `json:"id"`
	TaskID         uuid.UUID `json:"taskId"`
	ProjectID      uuid.UUID `json:"projectId"`
	TaskTitle      string    `json:"taskTitle,omitempty"`
	Message        string    `json:"message"`
	FromMemberName *string   `json:"fromMemberName"`
	ToMemberName   *string   `json:"toMemberName"`
	CreatedAt      time.Time `json:"createdAt"`
}
