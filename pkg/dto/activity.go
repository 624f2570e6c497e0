package dto

import "github.com/google/uuid"

type ActivityLogResponse struct {
	ID             uuid.UUID `json:"id"`
	TaskID         uuid.UUID `json:"taskId"`
	ProjectID      uuid.UUID `json:"projectId"`
	TaskTitle      string    `json:"taskTitle"`
	Message        string    `json:"message"`
	FromMemberName *string   `json:"fromMemberName"`
	ToMemberName   *string   `json:"toMemberName"`
	CreatedAt      string    `json:"createdAt"`
}

type ActivityLogsResponse struct {
	Logs []ActivityLogResponse `json:"logs"`
}
