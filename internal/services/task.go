package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/taskflow-api/internal/database"
	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/dimitrije/taskflow-api/internal/rebalance"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TaskService struct {
	db *database.DB
}

func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{db: db}
}

// TaskInput carries the fields of a new task. Empty priority and status take their defaults.
type TaskInput struct {
	ProjectID          uuid.UUID
	Title              string
	Description        string
	AssignedMemberName *string
	Priority           models.Priority
	Status             models.Status
}

// TaskUpdate is a partial update. An empty AssignedMemberName unassigns the task.
type TaskUpdate struct {
	Title              *string
	Description        *string
	AssignedMemberName *string
	Priority           *models.Priority
	Status             *models.Status
}

func (u TaskUpdate) empty() bool {
	return u.Title == nil && u.Description == nil && u.AssignedMemberName == nil &&
		u.Priority == nil && u.Status == nil
}

const taskColumns = `tk.id, tk.project_id, tk.title, tk.description, tk.assigned_member_name,
	tk.priority, tk.status, tk.created_at, tk.updated_at`

// Tie-breaks on id keep the order total when creation times collide.
const movableOrder = `CASE tk.priority WHEN 'Low' THEN 0 WHEN 'Medium' THEN 1 ELSE 2 END, tk.created_at ASC, tk.id ASC`

func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, in TaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ErrTaskTitleRequired
	}
	if in.Priority == "" {
		in.Priority = models.PriorityLow
	}
	if !in.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if in.Status == "" {
		in.Status = models.StatusPending
	}
	if !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := scanTask(s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks AS tk (project_id, title, description, assigned_member_name, priority, status)
		SELECT p.id, $2, $3, $4, $5, $6
		FROM projects p JOIN teams t ON t.id = p.team_id
		WHERE p.id = $1 AND t.owner_id = $7
		RETURNING `+taskColumns,
		in.ProjectID, in.Title, strings.TrimSpace(in.Description), normalizeAssignee(in.AssignedMemberName),
		in.Priority, in.Status, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// List returns the caller's tasks newest first, optionally filtered by project and assignee.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, projectID *uuid.UUID, assignee *string) ([]models.Task, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks tk
		JOIN projects p ON p.id = tk.project_id
		JOIN teams t ON t.id = p.team_id
		WHERE t.owner_id = $1
		  AND ($2::uuid IS NULL OR tk.project_id = $2)
		  AND ($3::text IS NULL OR tk.assigned_member_name = $3)
		ORDER BY tk.created_at DESC, tk.id
	`, ownerID, projectID, assignee)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *TaskService) GetOwned(ctx context.Context, taskID, ownerID uuid.UUID) (*models.Task, error) {
	task, err := scanTask(s.db.Pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks tk
		JOIN projects p ON p.id = tk.project_id
		JOIN teams t ON t.id = p.team_id
		WHERE tk.id = $1 AND t.owner_id = $2
	`, taskID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Update applies a partial update. When the assignee changes an activity entry is
// written in the same transaction.
func (s *TaskService) Update(ctx context.Context, taskID, ownerID uuid.UUID, upd TaskUpdate) (*models.Task, error) {
	if upd.empty() {
		return nil, ErrNoFieldsToUpdate
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanTask(tx.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks tk
		JOIN projects p ON p.id = tk.project_id
		JOIN teams t ON t.id = p.team_id
		WHERE tk.id = $1 AND t.owner_id = $2
		FOR UPDATE OF tk
	`, taskID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to lock task: %w", err)
	}

	next := *current
	if upd.Title != nil {
		next.Title = strings.TrimSpace(*upd.Title)
		if next.Title == "" {
			return nil, ErrTaskTitleRequired
		}
	}
	if upd.Description != nil {
		next.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Priority != nil {
		if !upd.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		next.Priority = *upd.Priority
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		next.Status = *upd.Status
	}
	if upd.AssignedMemberName != nil {
		next.AssignedMemberName = normalizeAssignee(upd.AssignedMemberName)
	}

	updated, err := scanTask(tx.QueryRow(ctx, `
		UPDATE tasks tk
		SET title = $1, description = $2, assigned_member_name = $3, priority = $4, status = $5, updated_at = NOW()
		WHERE tk.id = $6
		RETURNING `+taskColumns,
		next.Title, next.Description, next.AssignedMemberName, next.Priority, next.Status, taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	from, to := current.AssigneeName(), updated.AssigneeName()
	if from != to {
		msg := rebalance.AssignmentMessage(updated.Title, from, to)
		if err := appendActivity(ctx, tx, updated, msg, current.AssignedMemberName, updated.AssignedMemberName); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, ownerID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM tasks tk
		USING projects p, teams t
		WHERE tk.id = $1 AND p.id = tk.project_id AND t.id = p.team_id AND t.owner_id = $2
	`, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ActiveCounts maps each assignee name to its number of non-done tasks in the project.
func (s *TaskService) ActiveCounts(ctx context.Context, projectID uuid.UUID) (map[string]int, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT assigned_member_name, COUNT(*)
		FROM tasks
		WHERE project_id = $1 AND assigned_member_name IS NOT NULL AND status <> 'Done'
		GROUP BY assigned_member_name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

// FindMovable returns up to limit of the member's non-done, non-high tasks in the
// project, lowest priority first, then oldest.
func (s *TaskService) FindMovable(ctx context.Context, projectID uuid.UUID, memberName string, limit int) ([]models.Task, error) {
	if limit <= 0 {
		return []models.Task{}, nil
	}
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks tk
		WHERE tk.project_id = $1 AND tk.assigned_member_name = $2
		  AND tk.status <> 'Done' AND tk.priority <> 'High'
		ORDER BY `+movableOrder+`
		LIMIT $3
	`, projectID, memberName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find movable tasks: %w", err)
	}
	return collectTasks(rows)
}

// Reassign moves a task to a new member and records the move. The update only applies
// if the task still belongs to its previous assignee and is still movable; otherwise
// ErrAssignmentChanged is returned and nothing is written.
func (s *TaskService) Reassign(ctx context.Context, task models.Task, to string) (*models.Task, error) {
	from := task.AssigneeName()

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updated, err := scanTask(tx.QueryRow(ctx, `
		UPDATE tasks tk
		SET assigned_member_name = $1, updated_at = NOW()
		WHERE tk.id = $2 AND tk.assigned_member_name = $3
		  AND tk.status <> 'Done' AND tk.priority <> 'High'
		RETURNING `+taskColumns, to, task.ID, from))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssignmentChanged
		}
		return nil, fmt.Errorf("failed to reassign task: %w", err)
	}

	msg := rebalance.ReassignedMessage(updated.Title, from, to)
	if err := appendActivity(ctx, tx, updated, msg, &from, &to); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return updated, nil
}

// appendActivity records an assignment change. The owner is resolved through the
// task's project so the entry stays listable after the task is gone.
func appendActivity(ctx context.Context, tx pgx.Tx, task *models.Task, message string, from, to *string) error {
	tag, err := tx.Exec(ctx, `
		INSERT INTO activity_logs (task_id, project_id, owner_id, task_title, message, from_member_name, to_member_name)
		SELECT $1, p.id, t.owner_id, $3, $4, $5, $6
		FROM projects p JOIN teams t ON t.id = p.team_id
		WHERE p.id = $2
	`, task.ID, task.ProjectID, task.Title, message, from, to)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to append activity: %w", ErrProjectNotFound)
	}
	return nil
}

func normalizeAssignee(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.AssignedMemberName,
		&t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTasks(rows pgx.Rows) ([]models.Task, error) {
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}
