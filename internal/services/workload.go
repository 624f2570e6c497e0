package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/dimitrije/taskflow-api/internal/rebalance"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProjectLookup interface {
	GetOwned(ctx context.Context, projectID, ownerID uuid.UUID) (*models.Project, error)
	ListOwned(ctx context.Context, ownerID uuid.UUID, teamID *uuid.UUID) ([]models.Project, error)
}

type TeamLookup interface {
	GetOwned(ctx context.Context, teamID, ownerID uuid.UUID) (*models.Team, error)
}

// TaskMover is the task storage used while rebalancing a project.
type TaskMover interface {
	ActiveCounts(ctx context.Context, projectID uuid.UUID) (map[string]int, error)
	FindMovable(ctx context.Context, projectID uuid.UUID, memberName string, limit int) ([]models.Task, error)
	Reassign(ctx context.Context, task models.Task, to string) (*models.Task, error)
}

// ReassignNotifier is told about every project that had tasks moved.
type ReassignNotifier interface {
	BroadcastTasksReassigned(projectID uuid.UUID, tasks []models.Task)
}

type WorkloadService struct {
	projects ProjectLookup
	teams    TeamLookup
	tasks    TaskMover
	notifier ReassignNotifier
	logger   *zap.Logger
}

func NewWorkloadService(projects ProjectLookup, teams TeamLookup, tasks TaskMover, notifier ReassignNotifier, logger *zap.Logger) *WorkloadService {
	return &WorkloadService{
		projects: projects,
		teams:    teams,
		tasks:    tasks,
		notifier: notifier,
		logger:   logger,
	}
}

// Snapshot returns the current load of every member of the project's team, in member order.
func (s *WorkloadService) Snapshot(ctx context.Context, ownerID, projectID uuid.UUID) ([]rebalance.Load, error) {
	project, err := s.projects.GetOwned(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}
	team, err := s.teams.GetOwned(ctx, project.TeamID, ownerID)
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	counts, err := s.tasks.ActiveCounts(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	return rebalance.Snapshot(team.Members, counts), nil
}

// Rebalance moves movable tasks away from members over capacity to members with free
// slots, one project at a time. A nil projectID covers every project the owner has.
// It returns every task it moved. On a storage error it stops and returns the tasks
// moved so far together with the error; those moves stay committed.
func (s *WorkloadService) Rebalance(ctx context.Context, ownerID uuid.UUID, projectID *uuid.UUID) ([]models.Task, error) {
	var projects []models.Project
	if projectID != nil {
		project, err := s.projects.GetOwned(ctx, *projectID, ownerID)
		if err != nil {
			return nil, err
		}
		projects = []models.Project{*project}
	} else {
		owned, err := s.projects.ListOwned(ctx, ownerID, nil)
		if err != nil {
			return nil, err
		}
		projects = owned
	}

	moved := []models.Task{}
	for _, project := range projects {
		tasks, err := s.rebalanceProject(ctx, ownerID, project)
		moved = append(moved, tasks...)
		if len(tasks) > 0 && s.notifier != nil {
			s.notifier.BroadcastTasksReassigned(project.ID, tasks)
		}
		if err != nil {
			s.logger.Warn("rebalance aborted",
				zap.String("project_id", project.ID.String()),
				zap.Int("moved", len(moved)),
				zap.Error(err))
			return moved, err
		}
	}
	return moved, nil
}

func (s *WorkloadService) rebalanceProject(ctx context.Context, ownerID uuid.UUID, project models.Project) ([]models.Task, error) {
	team, err := s.teams.GetOwned(ctx, project.TeamID, ownerID)
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			s.logger.Warn("skipping project whose team is not owned by caller",
				zap.String("project_id", project.ID.String()))
			return nil, nil
		}
		return nil, err
	}

	counts, err := s.tasks.ActiveCounts(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	overloaded, pool := rebalance.Partition(rebalance.Snapshot(team.Members, counts))

	var moved []models.Task
	for _, donor := range overloaded {
		if pool.Empty() {
			break
		}
		found, err := s.tasks.FindMovable(ctx, project.ID, donor.Name, donor.Excess())
		if err != nil {
			return moved, err
		}

		for _, task := range rebalance.SelectCandidates(found, donor.Excess()) {
			to, ok := pool.Take()
			if !ok {
				break
			}
			updated, err := s.tasks.Reassign(ctx, task, to)
			if errors.Is(err, ErrAssignmentChanged) {
				pool.Release(to)
				s.logger.Info("task changed during rebalance, skipped",
					zap.String("task_id", task.ID.String()))
				continue
			}
			if err != nil {
				return moved, fmt.Errorf("failed to move task %s: %w", task.ID, err)
			}

			s.logger.Info("task reassigned",
				zap.String("project_id", project.ID.String()),
				zap.String("task_id", updated.ID.String()),
				zap.String("from", donor.Name),
				zap.String("to", to))
			moved = append(moved, *updated)
		}
	}
	return moved, nil
}
