package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/dimitrije/taskflow-api/internal/rebalance"
	"github.com/dimitrije/taskflow-api/internal/services"
	"github.com/dimitrije/taskflow-api/internal/sse"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	RotateRefreshToken(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, name string, members []models.Member) (*models.Team, error)
	ListOwned(ctx context.Context, ownerID uuid.UUID) ([]models.Team, error)
	GetOwned(ctx context.Context, teamID, ownerID uuid.UUID) (*models.Team, error)
	Update(ctx context.Context, teamID, ownerID uuid.UUID, name *string, members []models.Member) (*models.Team, error)
	Delete(ctx context.Context, teamID, ownerID uuid.UUID) error
	AddMember(ctx context.Context, teamID, ownerID uuid.UUID, member models.Member) (*models.Team, error)
	UpdateMember(ctx context.Context, teamID, ownerID uuid.UUID, index int, member models.Member) (*models.Team, error)
	DeleteMember(ctx context.Context, teamID, ownerID uuid.UUID, index int) (*models.Team, error)
}

// ProjectServiceInterface defines the methods used by handlers from ProjectService
type ProjectServiceInterface interface {
	Create(ctx context.Context, ownerID, teamID uuid.UUID, title, description string) (*models.Project, error)
	ListOwned(ctx context.Context, ownerID uuid.UUID, teamID *uuid.UUID) ([]models.Project, error)
	GetOwned(ctx context.Context, projectID, ownerID uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, projectID, ownerID uuid.UUID, title, description *string, teamID *uuid.UUID) (*models.Project, error)
	Delete(ctx context.Context, projectID, ownerID uuid.UUID) error
}

// TaskServiceInterface defines the methods used by handlers from TaskService
type TaskServiceInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, in services.TaskInput) (*models.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, projectID *uuid.UUID, assignee *string) ([]models.Task, error)
	GetOwned(ctx context.Context, taskID, ownerID uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, taskID, ownerID uuid.UUID, upd services.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, taskID, ownerID uuid.UUID) error
}

// WorkloadServiceInterface defines the methods used by handlers from WorkloadService
type WorkloadServiceInterface interface {
	Snapshot(ctx context.Context, ownerID, projectID uuid.UUID) ([]rebalance.Load, error)
	Rebalance(ctx context.Context, ownerID uuid.UUID, projectID *uuid.UUID) ([]models.Task, error)
}

// ActivityServiceInterface defines the methods used by handlers from ActivityService
type ActivityServiceInterface interface {
	List(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.ActivityLog, error)
}

// DashboardServiceInterface defines the methods used by handlers from DashboardService
type DashboardServiceInterface interface {
	Stats(ctx context.Context, ownerID uuid.UUID) (*services.DashboardStats, error)
}

// HubInterface defines the methods used by handlers from the Hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	BroadcastTaskEvent(eventType string, projectID, taskID uuid.UUID, task *models.Task)
}
