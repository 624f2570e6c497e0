package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/taskflow-api/internal/database"
	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProjectService struct {
	db *database.DB
}

func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

const projectColumns = `p.id, p.team_id, p.title, p.description, p.created_at, p.updated_at`

// Create inserts a project under a team the caller owns. The ownership check and the
// insert are a single statement, so a foreign team yields ErrTeamNotFound.
func (s *ProjectService) Create(ctx context.Context, ownerID, teamID uuid.UUID, title, description string) (*models.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrProjectTitleRequired
	}

	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (team_id, title, description)
		SELECT t.id, $2, $3 FROM teams t WHERE t.id = $1 AND t.owner_id = $4
		RETURNING id, team_id, title, description, created_at, updated_at
	`, teamID, title, strings.TrimSpace(description), ownerID).Scan(
		&project.ID, &project.TeamID, &project.Title, &project.Description, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

// ListOwned returns the caller's projects newest first, optionally limited to one team.
func (s *ProjectService) ListOwned(ctx context.Context, ownerID uuid.UUID, teamID *uuid.UUID) ([]models.Project, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		JOIN teams t ON t.id = p.team_id
		WHERE t.owner_id = $1 AND ($2::uuid IS NULL OR p.team_id = $2)
		ORDER BY p.created_at DESC, p.id
	`, ownerID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectService) GetOwned(ctx context.Context, projectID, ownerID uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		JOIN teams t ON t.id = p.team_id
		WHERE p.id = $1 AND t.owner_id = $2
	`, projectID, ownerID).Scan(&p.ID, &p.TeamID, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// Update changes any of title, description and team. Moving to another team requires
// owning that team as well.
func (s *ProjectService) Update(ctx context.Context, projectID, ownerID uuid.UUID, title, description *string, teamID *uuid.UUID) (*models.Project, error) {
	if title == nil && description == nil && teamID == nil {
		return nil, ErrNoFieldsToUpdate
	}

	var titleArg, descriptionArg any
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, ErrProjectTitleRequired
		}
		titleArg = trimmed
	}
	if description != nil {
		descriptionArg = strings.TrimSpace(*description)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if teamID != nil {
		var owned bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1 AND owner_id = $2)
		`, *teamID, ownerID).Scan(&owned)
		if err != nil {
			return nil, fmt.Errorf("failed to check team ownership: %w", err)
		}
		if !owned {
			return nil, ErrTeamNotFound
		}
	}

	var p models.Project
	err = tx.QueryRow(ctx, `
		UPDATE projects p
		SET title = COALESCE($1, p.title),
		    description = COALESCE($2, p.description),
		    team_id = COALESCE($3, p.team_id),
		    updated_at = NOW()
		FROM teams t
		WHERE p.id = $4 AND t.id = p.team_id AND t.owner_id = $5
		RETURNING `+projectColumns, titleArg, descriptionArg, teamID, projectID, ownerID).Scan(
		&p.ID, &p.TeamID, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &p, nil
}

func (s *ProjectService) Delete(ctx context.Context, projectID, ownerID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM projects p
		USING teams t
		WHERE p.id = $1 AND t.id = p.team_id AND t.owner_id = $2
	`, projectID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}
