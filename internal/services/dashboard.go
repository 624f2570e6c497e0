package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/taskflow-api/internal/database"
	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/google/uuid"
)

const (
	UnassignedLabel      = "Unassigned"
	dashboardRecentLimit = 5
)

type MemberWorkload struct {
	MemberName string
	Count      int
	Pending    int
	InProgress int
	Done       int
	Capacity   int
}

type DashboardStats struct {
	TotalProjects  int
	TotalTasks     int
	Workload       []MemberWorkload
	RecentActivity []models.ActivityLog
}

type DashboardService struct {
	db       *database.DB
	teams    *TeamService
	activity *ActivityService
}

func NewDashboardService(db *database.DB, teams *TeamService, activity *ActivityService) *DashboardService {
	return &DashboardService{db: db, teams: teams, activity: activity}
}

// Stats summarises every project in the caller's teams. Workload groups tasks by
// assignee, with unassigned tasks under UnassignedLabel. Capacity comes from the
// owner's team member lists; when a name appears in several teams the last one wins.
func (s *DashboardService) Stats(ctx context.Context, ownerID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := s.db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects p JOIN teams t ON t.id = p.team_id WHERE t.owner_id = $1),
			(SELECT COUNT(*) FROM tasks tk
				JOIN projects p ON p.id = tk.project_id
				JOIN teams t ON t.id = p.team_id
				WHERE t.owner_id = $1)
	`, ownerID).Scan(&stats.TotalProjects, &stats.TotalTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects and tasks: %w", err)
	}

	teams, err := s.teams.ListOwned(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	capacities := make(map[string]int)
	for _, team := range teams {
		for _, m := range team.Members {
			capacities[m.Name] = m.Capacity
		}
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT COALESCE(tk.assigned_member_name, $2) AS member_name,
			COUNT(*),
			COUNT(*) FILTER (WHERE tk.status = 'Pending'),
			COUNT(*) FILTER (WHERE tk.status = 'In Progress'),
			COUNT(*) FILTER (WHERE tk.status = 'Done')
		FROM tasks tk
		JOIN projects p ON p.id = tk.project_id
		JOIN teams t ON t.id = p.team_id
		WHERE t.owner_id = $1
		GROUP BY member_name
		ORDER BY member_name
	`, ownerID, UnassignedLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise workload: %w", err)
	}
	defer rows.Close()

	stats.Workload = []MemberWorkload{}
	for rows.Next() {
		var w MemberWorkload
		if err := rows.Scan(&w.MemberName, &w.Count, &w.Pending, &w.InProgress, &w.Done); err != nil {
			return nil, err
		}
		w.Capacity = capacities[w.MemberName]
		stats.Workload = append(stats.Workload, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.RecentActivity, err = s.activity.List(ctx, ownerID, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
