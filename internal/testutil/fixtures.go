package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/taskflow-api/internal/database"
	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user. The stored hash is not a valid bcrypt hash, so
// fixtures users cannot log in.
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", f.counter),
		Name:         fmt.Sprintf("Test User %d", f.counter),
		PasswordHash: "fixture",
	}

	for _, opt := range opts {
		opt(user)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, user.Email, user.Name, user.PasswordHash).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// CreateTeam creates a team owned by owner with the given members
func (f *Fixtures) CreateTeam(t *testing.T, owner *models.User, members ...models.Member) *models.Team {
	t.Helper()
	f.counter++

	if members == nil {
		members = []models.Member{}
	}
	raw, err := json.Marshal(members)
	if err != nil {
		t.Fatalf("failed to encode members: %v", err)
	}

	team := &models.Team{
		Name:    fmt.Sprintf("Test Team %d", f.counter),
		OwnerID: owner.ID,
		Members: members,
	}

	err = f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO teams (name, owner_id, members)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, team.Name, team.OwnerID, raw).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	return team
}

// CreateProject creates a project under team
func (f *Fixtures) CreateProject(t *testing.T, team *models.Team) *models.Project {
	t.Helper()
	f.counter++

	project := &models.Project{
		TeamID:      team.ID,
		Title:       fmt.Sprintf("Test Project %d", f.counter),
		Description: "fixture project",
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO projects (team_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, project.TeamID, project.Title, project.Description).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	return project
}

// CreateTask creates a Pending, Low priority task in project unless options say otherwise.
// Each task is stamped one second after the previous fixture task so creation order is stable.
func (f *Fixtures) CreateTask(t *testing.T, project *models.Project, opts ...TaskOption) *models.Task {
	t.Helper()
	f.counter++

	task := &models.Task{
		ProjectID: project.ID,
		Title:     fmt.Sprintf("Task %d", f.counter),
		Priority:  models.PriorityLow,
		Status:    models.StatusPending,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.counter) * time.Second),
	}

	for _, opt := range opts {
		opt(task)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO tasks (project_id, title, description, assigned_member_name, priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, updated_at
	`, task.ProjectID, task.Title, task.Description, task.AssignedMemberName,
		string(task.Priority), string(task.Status), task.CreatedAt).Scan(&task.ID, &task.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// TaskOption configures a test task
type TaskOption func(*models.Task)

// WithTitle sets the task's title
func WithTitle(title string) TaskOption {
	return func(t *models.Task) {
		t.Title = title
	}
}

// AssignedTo sets the task's assignee
func AssignedTo(name string) TaskOption {
	return func(t *models.Task) {
		t.AssignedMemberName = &name
	}
}

// WithPriority sets the task's priority
func WithPriority(p models.Priority) TaskOption {
	return func(t *models.Task) {
		t.Priority = p
	}
}

// WithStatus sets the task's status
func WithStatus(s models.Status) TaskOption {
	return func(t *models.Task) {
		t.Status = s
	}
}

// AssigneeOf reads a task's current assignee straight from the database
func (f *Fixtures) AssigneeOf(t *testing.T, taskID uuid.UUID) *string {
	t.Helper()
	var name *string
	err := f.db.Pool.QueryRow(context.Background(),
		`SELECT assigned_member_name FROM tasks WHERE id = $1`, taskID).Scan(&name)
	if err != nil {
		t.Fatalf("failed to read task assignee: %v", err)
	}
	return name
}
