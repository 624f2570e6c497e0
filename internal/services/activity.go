package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/taskflow-api/internal/database"
	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
)

type ActivityService struct {
	db *database.DB
}

func NewActivityService(db *database.DB) *ActivityService {
	return &ActivityService{db: db}
}

// List returns the caller's newest activity entries, including those of tasks since deleted.
// A non-positive limit falls back to DefaultActivityLimit; larger ones are capped.
func (s *ActivityService) List(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	limit = min(limit, MaxActivityLimit)

	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, task_id, project_id, task_title, message, from_member_name, to_member_name, created_at
		FROM activity_logs
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	logs := []models.ActivityLog{}
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.TaskID, &l.ProjectID, &l.TaskTitle, &l.Message, &l.FromMemberName, &l.ToMemberName, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
