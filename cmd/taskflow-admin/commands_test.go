package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/dimitrije/taskflow-api/internal/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	called bool
	err    error
}

func (f *fakeMigrator) Migrate(ctx context.Context) error {
	f.called = true
	return f.err
}

type fakeUsers map[string]*models.User

func (f fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f[email]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeRebalancer struct {
	ownerID   uuid.UUID
	projectID *uuid.UUID
	moved     []models.Task
	err       error
}

func (f *fakeRebalancer) Rebalance(ctx context.Context, ownerID uuid.UUID, projectID *uuid.UUID) ([]models.Task, error) {
	f.ownerID = ownerID
	f.projectID = projectID
	return f.moved, f.err
}

func run(t *testing.T, rt *deps, args ...string) (string, error) {
	t.Helper()
	closed := false
	open := func(ctx context.Context) (*deps, func(), error) {
		return rt, func() { closed = true }, nil
	}

	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed, "runtime should be closed")
	}
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	m := &fakeMigrator{}

	out, err := run(t, &deps{migrator: m}, "migrate")

	require.NoError(t, err)
	assert.True(t, m.called)
	assert.Contains(t, out, "migrations applied")
}

func TestMigrateCommand_Error(t *testing.T) {
	_, err := run(t, &deps{migrator: &fakeMigrator{err: errors.New("migration 3 failed")}}, "migrate")

	assert.ErrorContains(t, err, "migration 3 failed")
}

func TestReassignCommand_PrintsMoves(t *testing.T) {
	owner := &models.User{ID: uuid.New(), Email: "owner@example.com"}
	projectID := uuid.New()
	b := "B"
	r := &fakeRebalancer{moved: []models.Task{
		{ID: uuid.New(), ProjectID: projectID, Title: "T1", AssignedMemberName: &b},
		{ID: uuid.New(), ProjectID: projectID, Title: "T2", AssignedMemberName: &b},
	}}

	out, err := run(t, &deps{users: fakeUsers{owner.Email: owner}, rebalancer: r},
		"reassign", "--email", owner.Email, "--project", projectID.String())

	require.NoError(t, err)
	assert.Equal(t, owner.ID, r.ownerID)
	require.NotNil(t, r.projectID)
	assert.Equal(t, projectID, *r.projectID)
	assert.Contains(t, out, `"T1" -> B`)
	assert.Contains(t, out, `"T2" -> B`)
	assert.Contains(t, out, "Reassigned 2 tasks")
}

func TestReassignCommand_AllProjects(t *testing.T) {
	owner := &models.User{ID: uuid.New(), Email: "owner@example.com"}
	r := &fakeRebalancer{}

	out, err := run(t, &deps{users: fakeUsers{owner.Email: owner}, rebalancer: r},
		"reassign", "--email", owner.Email)

	require.NoError(t, err)
	assert.Nil(t, r.projectID)
	assert.Contains(t, out, "Reassigned 0 tasks")
}

func TestReassignCommand_UnknownUser(t *testing.T) {
	_, err := run(t, &deps{users: fakeUsers{}, rebalancer: &fakeRebalancer{}},
		"reassign", "--email", "ghost@example.com")

	assert.ErrorContains(t, err, "no user found with email: ghost@example.com")
}

func TestReassignCommand_InvalidProject(t *testing.T) {
	_, err := run(t, &deps{}, "reassign", "--email", "owner@example.com", "--project", "nope")

	assert.ErrorContains(t, err, "invalid project id")
}

func TestReassignCommand_RequiresEmail(t *testing.T) {
	_, err := run(t, &deps{}, "reassign")

	assert.Error(t, err)
}

func TestReassignCommand_ProjectNotFound(t *testing.T) {
	owner := &models.User{ID: uuid.New(), Email: "owner@example.com"}
	r := &fakeRebalancer{err: services.ErrProjectNotFound}

	_, err := run(t, &deps{users: fakeUsers{owner.Email: owner}, rebalancer: r},
		"reassign", "--email", owner.Email, "--project", uuid.NewString())

	assert.ErrorIs(t, err, services.ErrProjectNotFound)
}

func TestReassignCommand_PartialFailure(t *testing.T) {
	owner := &models.User{ID: uuid.New(), Email: "owner@example.com"}
	b := "B"
	r := &fakeRebalancer{
		moved: []models.Task{{ID: uuid.New(), ProjectID: uuid.New(), Title: "T1", AssignedMemberName: &b}},
		err:   errors.New("connection lost"),
	}

	out, err := run(t, &deps{users: fakeUsers{owner.Email: owner}, rebalancer: r},
		"reassign", "--email", owner.Email)

	assert.ErrorContains(t, err, "stopped after 1 moves")
	assert.Contains(t, out, `"T1" -> B`)
}
