package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/taskflow-api/internal/database"
	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TeamService struct {
	db *database.DB
}

func NewTeamService(db *database.DB) *TeamService {
	return &TeamService{db: db}
}

const teamColumns = `id, name, owner_id, members, created_at, updated_at`

func (s *TeamService) Create(ctx context.Context, ownerID uuid.UUID, name string, members []models.Member) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	members, err := normalizeMembers(members)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return nil, fmt.Errorf("failed to encode members: %w", err)
	}

	team, err := scanTeam(s.db.Pool.QueryRow(ctx, `
		INSERT INTO teams (name, owner_id, members)
		VALUES ($1, $2, $3)
		RETURNING `+teamColumns, name, ownerID, raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *TeamService) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]models.Team, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+teamColumns+`
		FROM teams WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

// GetOwned returns ErrTeamNotFound both for missing teams and teams owned by someone else.
func (s *TeamService) GetOwned(ctx context.Context, teamID, ownerID uuid.UUID) (*models.Team, error) {
	team, err := scanTeam(s.db.Pool.QueryRow(ctx, `
		SELECT `+teamColumns+`
		FROM teams WHERE id = $1 AND owner_id = $2
	`, teamID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// Update replaces the name and/or the whole member list. A nil members slice leaves members unchanged.
func (s *TeamService) Update(ctx context.Context, teamID, ownerID uuid.UUID, name *string, members []models.Member) (*models.Team, error) {
	if name == nil && members == nil {
		return nil, ErrNoFieldsToUpdate
	}

	var nameArg any
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, ErrTeamNameRequired
		}
		nameArg = trimmed
	}

	var membersArg any
	if members != nil {
		normalized, err := normalizeMembers(members)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(normalized)
		if err != nil {
			return nil, fmt.Errorf("failed to encode members: %w", err)
		}
		membersArg = raw
	}

	team, err := scanTeam(s.db.Pool.QueryRow(ctx, `
		UPDATE teams
		SET name = COALESCE($1, name), members = COALESCE($2, members), updated_at = NOW()
		WHERE id = $3 AND owner_id = $4
		RETURNING `+teamColumns, nameArg, membersArg, teamID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

func (s *TeamService) Delete(ctx context.Context, teamID, ownerID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM teams WHERE id = $1 AND owner_id = $2`, teamID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (s *TeamService) AddMember(ctx context.Context, teamID, ownerID uuid.UUID, member models.Member) (*models.Team, error) {
	return s.mutateMembers(ctx, teamID, ownerID, func(members []models.Member) ([]models.Member, error) {
		return append(members, member), nil
	})
}

func (s *TeamService) UpdateMember(ctx context.Context, teamID, ownerID uuid.UUID, index int, member models.Member) (*models.Team, error) {
	return s.mutateMembers(ctx, teamID, ownerID, func(members []models.Member) ([]models.Member, error) {
		if index < 0 || index >= len(members) {
			return nil, ErrMemberNotFound
		}
		members[index] = member
		return members, nil
	})
}

func (s *TeamService) DeleteMember(ctx context.Context, teamID, ownerID uuid.UUID, index int) (*models.Team, error) {
	return s.mutateMembers(ctx, teamID, ownerID, func(members []models.Member) ([]models.Member, error) {
		if index < 0 || index >= len(members) {
			return nil, ErrMemberNotFound
		}
		return append(members[:index], members[index+1:]...), nil
	})
}

// mutateMembers locks the team row so concurrent member edits do not overwrite each other.
func (s *TeamService) mutateMembers(ctx context.Context, teamID, ownerID uuid.UUID, fn func([]models.Member) ([]models.Member, error)) (*models.Team, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `
		SELECT members FROM teams WHERE id = $1 AND owner_id = $2 FOR UPDATE
	`, teamID, ownerID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to lock team: %w", err)
	}

	var members []models.Member
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, fmt.Errorf("failed to decode members: %w", err)
	}

	members, err = fn(members)
	if err != nil {
		return nil, err
	}
	members, err = normalizeMembers(members)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(members)
	if err != nil {
		return nil, fmt.Errorf("failed to encode members: %w", err)
	}

	team, err := scanTeam(tx.QueryRow(ctx, `
		UPDATE teams SET members = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+teamColumns, encoded, teamID))
	if err != nil {
		return nil, fmt.Errorf("failed to update members: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return team, nil
}

// normalizeMembers trims names and roles and rejects invalid or duplicate entries.
func normalizeMembers(members []models.Member) ([]models.Member, error) {
	out := make([]models.Member, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		m.Name = strings.TrimSpace(m.Name)
		m.Role = strings.TrimSpace(m.Role)
		if m.Name == "" || m.Role == "" {
			return nil, ErrInvalidMember
		}
		if m.Capacity < 0 {
			return nil, ErrInvalidCapacity
		}
		if _, dup := seen[m.Name]; dup {
			return nil, ErrDuplicateMemberName
		}
		seen[m.Name] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var team models.Team
	var raw []byte
	if err := row.Scan(&team.ID, &team.Name, &team.OwnerID, &raw, &team.CreatedAt, &team.UpdatedAt); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &team.Members); err != nil {
			return nil, fmt.Errorf("failed to decode members: %w", err)
		}
	}
	if team.Members == nil {
		team.Members = []models.Member{}
	}
	return &team, nil
}
