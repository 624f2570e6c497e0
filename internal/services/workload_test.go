package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/dimitrije/taskflow-api/internal/rebalance"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory ProjectLookup, TeamLookup and TaskMover.
type memStore struct {
	ownerID  uuid.UUID
	teams    map[uuid.UUID]*models.Team
	projects []models.Project
	tasks    []*models.Task
	logs     []models.ActivityLog

	// beforeReassign lets a test change a task under the engine's feet.
	beforeReassign func(task *models.Task)
	reassignErr    error
}

func newMemStore() *memStore {
	return &memStore{ownerID: uuid.New(), teams: map[uuid.UUID]*models.Team{}}
}

func (m *memStore) addTeam(owner uuid.UUID, members ...models.Member) *models.Team {
	team := &models.Team{ID: uuid.New(), Name: "Alpha", OwnerID: owner, Members: members}
	m.teams[team.ID] = team
	return team
}

func (m *memStore) addProject(team *models.Team) models.Project {
	p := models.Project{ID: uuid.New(), TeamID: team.ID, Title: fmt.Sprintf("P%d", len(m.projects)+1)}
	m.projects = append(m.projects, p)
	return p
}

var clock = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func (m *memStore) addTask(project models.Project, title, assignee string, priority models.Priority, status models.Status) *models.Task {
	clock = clock.Add(time.Minute)
	t := &models.Task{
		ID: uuid.New(), ProjectID: project.ID, Title: title,
		Priority: priority, Status: status, CreatedAt: clock, UpdatedAt: clock,
	}
	if assignee != "" {
		t.AssignedMemberName = &assignee
	}
	m.tasks = append(m.tasks, t)
	return t
}

func (m *memStore) GetOwned(ctx context.Context, projectID, ownerID uuid.UUID) (*models.Project, error) {
	for _, p := range m.projects {
		if p.ID == projectID {
			if team, ok := m.teams[p.TeamID]; ok && team.OwnerID == ownerID {
				return &p, nil
			}
		}
	}
	return nil, ErrProjectNotFound
}

func (m *memStore) ListOwned(ctx context.Context, ownerID uuid.UUID, teamID *uuid.UUID) ([]models.Project, error) {
	// Unowned projects are returned on purpose so the engine's own team check is exercised.
	return slices.Clone(m.projects), nil
}

type memTeams struct{ *memStore }

func (m memTeams) GetOwned(ctx context.Context, teamID, ownerID uuid.UUID) (*models.Team, error) {
	team, ok := m.teams[teamID]
	if !ok || team.OwnerID != ownerID {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

func (m *memStore) ActiveCounts(ctx context.Context, projectID uuid.UUID) (map[string]int, error) {
	counts := map[string]int{}
	for _, t := range m.tasks {
		if t.ProjectID == projectID && t.AssignedMemberName != nil && t.Active() {
			counts[*t.AssignedMemberName]++
		}
	}
	return counts, nil
}

func (m *memStore) FindMovable(ctx context.Context, projectID uuid.UUID, name string, limit int) ([]models.Task, error) {
	var out []models.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID && t.AssigneeName() == name && t.Movable() {
			out = append(out, *t)
		}
	}
	slices.SortFunc(out, func(a, b models.Task) int {
		if d := a.Priority.Rank() - b.Priority.Rank(); d != 0 {
			return d
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Reassign(ctx context.Context, task models.Task, to string) (*models.Task, error) {
	for _, t := range m.tasks {
		if t.ID != task.ID {
			continue
		}
		if m.beforeReassign != nil {
			m.beforeReassign(t)
		}
		if m.reassignErr != nil {
			return nil, m.reassignErr
		}
		from := task.AssigneeName()
		if t.AssigneeName() != from || !t.Movable() {
			return nil, ErrAssignmentChanged
		}
		name := to
		t.AssignedMemberName = &name
		m.logs = append(m.logs, models.ActivityLog{
			ID: uuid.New(), TaskID: t.ID,
			Message:        rebalance.ReassignedMessage(t.Title, from, to),
			FromMemberName: &from, ToMemberName: &name,
		})
		updated := *t
		return &updated, nil
	}
	return nil, ErrAssignmentChanged
}

type recordingNotifier struct {
	calls map[uuid.UUID]int
}

func (n *recordingNotifier) BroadcastTasksReassigned(projectID uuid.UUID, tasks []models.Task) {
	if n.calls == nil {
		n.calls = map[uuid.UUID]int{}
	}
	n.calls[projectID] += len(tasks)
}

func newWorkloadService(store *memStore, notifier ReassignNotifier) *WorkloadService {
	return NewWorkloadService(store, memTeams{store}, store, notifier, zap.NewNop())
}

func (m *memStore) activeOf(projectID uuid.UUID, name string) int {
	counts, _ := m.ActiveCounts(context.Background(), projectID)
	return counts[name]
}

func TestWorkloadService_Rebalance_MovesOldestToFreeMember(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 2},
		models.Member{Name: "B", Role: "Dev", Capacity: 2})
	p1 := store.addProject(team)
	t1 := store.addTask(p1, "T1", "A", models.PriorityLow, models.StatusPending)
	t2 := store.addTask(p1, "T2", "A", models.PriorityLow, models.StatusPending)
	store.addTask(p1, "T3", "A", models.PriorityLow, models.StatusPending)
	store.addTask(p1, "T4", "A", models.PriorityLow, models.StatusPending)
	notifier := &recordingNotifier{}

	moved, err := newWorkloadService(store, notifier).Rebalance(context.Background(), store.ownerID, &p1.ID)

	require.NoError(t, err)
	require.Len(t, moved, 2)
	assert.Equal(t, t1.ID, moved[0].ID)
	assert.Equal(t, t2.ID, moved[1].ID)
	for _, task := range moved {
		assert.Equal(t, "B", task.AssigneeName())
	}
	require.Len(t, store.logs, 2)
	assert.Equal(t, "Task 'T1' reassigned from 'A' to 'B'.", store.logs[0].Message)
	assert.Equal(t, "Task 'T2' reassigned from 'A' to 'B'.", store.logs[1].Message)
	assert.Equal(t, 2, store.activeOf(p1.ID, "A"))
	assert.Equal(t, 2, store.activeOf(p1.ID, "B"))
	assert.Equal(t, 2, notifier.calls[p1.ID])
}

func TestWorkloadService_Rebalance_WithoutNotifier(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 0},
		models.Member{Name: "B", Role: "Dev", Capacity: 1})
	p1 := store.addProject(team)
	store.addTask(p1, "T1", "A", models.PriorityMedium, models.StatusPending)

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, nil)

	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, "B", moved[0].AssigneeName())
	require.Len(t, store.logs, 1)
}

func TestWorkloadService_Rebalance_HighPriorityNeverMoves(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 2},
		models.Member{Name: "B", Role: "Dev", Capacity: 2})
	p1 := store.addProject(team)
	for i := range 4 {
		store.addTask(p1, fmt.Sprintf("H%d", i), "A", models.PriorityHigh, models.StatusPending)
	}
	notifier := &recordingNotifier{}

	moved, err := newWorkloadService(store, notifier).Rebalance(context.Background(), store.ownerID, &p1.ID)

	require.NoError(t, err)
	assert.NotNil(t, moved)
	assert.Empty(t, moved)
	assert.Empty(t, store.logs)
	assert.Equal(t, 4, store.activeOf(p1.ID, "A"))
	assert.Empty(t, notifier.calls)
}

func TestWorkloadService_Rebalance_DoneTasksIgnored(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 1},
		models.Member{Name: "B", Role: "Dev", Capacity: 3})
	p1 := store.addProject(team)
	done := store.addTask(p1, "Done1", "A", models.PriorityLow, models.StatusDone)
	store.addTask(p1, "Done2", "A", models.PriorityLow, models.StatusDone)
	store.addTask(p1, "Open", "A", models.PriorityLow, models.StatusInProgress)

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, &p1.ID)

	require.NoError(t, err)
	assert.Empty(t, moved)
	assert.Equal(t, "A", done.AssigneeName())
}

func TestWorkloadService_Rebalance_PriorityBeforeAge(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 1},
		models.Member{Name: "B", Role: "Dev", Capacity: 5})
	p1 := store.addProject(team)
	store.addTask(p1, "OldMedium", "A", models.PriorityMedium, models.StatusPending)
	store.addTask(p1, "Urgent", "A", models.PriorityHigh, models.StatusPending)
	newLow := store.addTask(p1, "NewLow", "A", models.PriorityLow, models.StatusPending)

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, &p1.ID)

	require.NoError(t, err)
	require.Len(t, moved, 2)
	assert.Equal(t, newLow.ID, moved[0].ID)
	assert.Equal(t, "OldMedium", moved[1].Title)
}

func TestWorkloadService_Rebalance_SpreadsAcrossRecipients(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 0},
		models.Member{Name: "Zed", Role: "Dev", Capacity: 2},
		models.Member{Name: "Bob", Role: "Dev", Capacity: 2},
		models.Member{Name: "Cy", Role: "Dev", Capacity: 1})
	p1 := store.addProject(team)
	for i := range 6 {
		store.addTask(p1, fmt.Sprintf("T%d", i+1), "A", models.PriorityLow, models.StatusPending)
	}

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, &p1.ID)

	require.NoError(t, err)
	var got []string
	for _, task := range moved {
		got = append(got, task.AssigneeName())
	}
	// Bob and Zed tie at 2 free slots, then all three tie at 1.
	assert.Equal(t, []string{"Bob", "Zed", "Bob", "Cy", "Zed"}, got)
	assert.Equal(t, 1, store.activeOf(p1.ID, "A"))
	for _, m := range team.Members[1:] {
		assert.LessOrEqual(t, store.activeOf(p1.ID, m.Name), m.Capacity, m.Name)
	}
}

func TestWorkloadService_Rebalance_DonorsInMemberOrder(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "Second", Role: "Dev", Capacity: 0},
		models.Member{Name: "First", Role: "Dev", Capacity: 0},
		models.Member{Name: "Free", Role: "Dev", Capacity: 1})
	p1 := store.addProject(team)
	store.addTask(p1, "ByFirst", "First", models.PriorityLow, models.StatusPending)
	store.addTask(p1, "BySecond", "Second", models.PriorityLow, models.StatusPending)

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, &p1.ID)

	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, "BySecond", moved[0].Title)
}

func TestWorkloadService_Rebalance_UnknownAssigneesIgnored(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 0},
		models.Member{Name: "B", Role: "Dev", Capacity: 1})
	p1 := store.addProject(team)
	ghost := store.addTask(p1, "Ghost", "Former Member", models.PriorityLow, models.StatusPending)
	store.addTask(p1, "Unassigned", "", models.PriorityLow, models.StatusPending)

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, &p1.ID)

	require.NoError(t, err)
	assert.Empty(t, moved)
	assert.Equal(t, "Former Member", ghost.AssigneeName())
}

func TestWorkloadService_Rebalance_IsDeterministic(t *testing.T) {
	build := func() (*memStore, models.Project) {
		store := newMemStore()
		team := store.addTeam(store.ownerID,
			models.Member{Name: "A", Role: "Dev", Capacity: 1},
			models.Member{Name: "B", Role: "Dev", Capacity: 2},
			models.Member{Name: "C", Role: "Dev", Capacity: 2})
		p := store.addProject(team)
		for i := range 5 {
			prio := models.PriorityLow
			if i%2 == 0 {
				prio = models.PriorityMedium
			}
			store.addTask(p, fmt.Sprintf("T%d", i), "A", prio, models.StatusPending)
		}
		return store, p
	}

	first, p1 := build()
	second, p2 := build()
	_, err := newWorkloadService(first, nil).Rebalance(context.Background(), first.ownerID, &p1.ID)
	require.NoError(t, err)
	_, err = newWorkloadService(second, nil).Rebalance(context.Background(), second.ownerID, &p2.ID)
	require.NoError(t, err)

	messages := func(logs []models.ActivityLog) []string {
		var out []string
		for _, l := range logs {
			out = append(out, l.Message)
		}
		return out
	}
	assert.Equal(t, messages(first.logs), messages(second.logs))
	assert.Len(t, first.logs, 4)
}

func TestWorkloadService_Rebalance_AuditMatchesMoves(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 1},
		models.Member{Name: "B", Role: "Dev", Capacity: 3})
	p1 := store.addProject(team)
	for i := range 4 {
		store.addTask(p1, fmt.Sprintf("T%d", i), "A", models.PriorityMedium, models.StatusInProgress)
	}

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, &p1.ID)

	require.NoError(t, err)
	require.Len(t, store.logs, len(moved))
	for i, task := range moved {
		assert.Equal(t, task.ID, store.logs[i].TaskID)
		assert.Equal(t, "A", *store.logs[i].FromMemberName)
		assert.Equal(t, task.AssigneeName(), *store.logs[i].ToMemberName)
	}
}

func TestWorkloadService_Rebalance_SecondRunIsNoop(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 1},
		models.Member{Name: "B", Role: "Dev", Capacity: 1})
	p1 := store.addProject(team)
	for i := range 4 {
		store.addTask(p1, fmt.Sprintf("T%d", i), "A", models.PriorityLow, models.StatusPending)
	}
	svc := newWorkloadService(store, nil)

	first, err := svc.Rebalance(context.Background(), store.ownerID, nil)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := svc.Rebalance(context.Background(), store.ownerID, nil)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, store.logs, 1)
}

func TestWorkloadService_Rebalance_AllProjectsNoCrossBorrowing(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 1},
		models.Member{Name: "B", Role: "Dev", Capacity: 1})
	p1 := store.addProject(team)
	p2 := store.addProject(team)
	store.addTask(p1, "P1-1", "A", models.PriorityLow, models.StatusPending)
	store.addTask(p1, "P1-2", "A", models.PriorityLow, models.StatusPending)
	store.addTask(p2, "P2-1", "B", models.PriorityLow, models.StatusPending)
	store.addTask(p2, "P2-2", "B", models.PriorityLow, models.StatusPending)

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, nil)

	require.NoError(t, err)
	require.Len(t, moved, 2)
	assert.Equal(t, "P1-1", moved[0].Title)
	assert.Equal(t, "B", moved[0].AssigneeName())
	assert.Equal(t, "P2-1", moved[1].Title)
	assert.Equal(t, "A", moved[1].AssigneeName())
}

func TestWorkloadService_Rebalance_SkipsUnownedTeam(t *testing.T) {
	store := newMemStore()
	foreign := store.addTeam(uuid.New(),
		models.Member{Name: "A", Role: "Dev", Capacity: 0},
		models.Member{Name: "B", Role: "Dev", Capacity: 1})
	p := store.addProject(foreign)
	store.addTask(p, "T", "A", models.PriorityLow, models.StatusPending)

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, nil)

	require.NoError(t, err)
	assert.Empty(t, moved)
}

func TestWorkloadService_Rebalance_UnknownProject(t *testing.T) {
	store := newMemStore()
	missing := uuid.New()

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, &missing)

	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.Nil(t, moved)
}

func TestWorkloadService_Rebalance_ConcurrentChangeReturnsSlot(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 0},
		models.Member{Name: "B", Role: "Dev", Capacity: 1})
	p1 := store.addProject(team)
	store.addTask(p1, "Raced", "A", models.PriorityLow, models.StatusPending)
	store.addTask(p1, "Next", "A", models.PriorityLow, models.StatusPending)

	store.beforeReassign = func(task *models.Task) {
		if task.Title == "Raced" {
			task.Status = models.StatusDone
		}
	}

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, &p1.ID)

	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, "Next", moved[0].Title)
	assert.Equal(t, "B", moved[0].AssigneeName())
}

func TestWorkloadService_Rebalance_StorageErrorKeepsEarlierMoves(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 0},
		models.Member{Name: "B", Role: "Dev", Capacity: 2})
	p1 := store.addProject(team)
	store.addTask(p1, "First", "A", models.PriorityLow, models.StatusPending)
	store.addTask(p1, "Second", "A", models.PriorityLow, models.StatusPending)

	calls := 0
	store.beforeReassign = func(task *models.Task) {
		calls++
		if calls == 2 {
			store.reassignErr = assert.AnError
		}
	}

	moved, err := newWorkloadService(store, nil).Rebalance(context.Background(), store.ownerID, &p1.ID)

	assert.ErrorIs(t, err, assert.AnError)
	require.Len(t, moved, 1)
	assert.Equal(t, "First", moved[0].Title)
	assert.Len(t, store.logs, 1)
}

func TestWorkloadService_Snapshot(t *testing.T) {
	store := newMemStore()
	team := store.addTeam(store.ownerID,
		models.Member{Name: "A", Role: "Dev", Capacity: 2},
		models.Member{Name: "B", Role: "QA", Capacity: 1})
	p1 := store.addProject(team)
	store.addTask(p1, "T1", "A", models.PriorityLow, models.StatusPending)
	store.addTask(p1, "T2", "A", models.PriorityHigh, models.StatusInProgress)
	store.addTask(p1, "T3", "A", models.PriorityLow, models.StatusDone)

	loads, err := newWorkloadService(store, nil).Snapshot(context.Background(), store.ownerID, p1.ID)

	require.NoError(t, err)
	assert.Equal(t, []rebalance.Load{
		{Name: "A", Role: "Dev", Capacity: 2, Active: 2},
		{Name: "B", Role: "QA", Capacity: 1, Active: 0},
	}, loads)
}
