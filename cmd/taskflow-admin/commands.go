package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

type userLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type rebalancer interface {
	Rebalance(ctx context.Context, ownerID uuid.UUID, projectID *uuid.UUID) ([]models.Task, error)
}

type deps struct {
	migrator   migrator
	users      userLookup
	rebalancer rebalancer
}

type openFunc func(ctx context.Context) (*deps, func(), error)

func newRootCmd(open openFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskflow-admin",
		Short: "Operator commands for the taskflow API",
		Long: `taskflow-admin runs maintenance tasks against the taskflow database.

It reads the same environment as the API server (DATABASE_URL, JWT_SECRET, LOG_LEVEL, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd(open), newReassignCmd(open))
	return root
}

func newMigrateCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := rt.migrator.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newReassignCmd(open openFunc) *cobra.Command {
	var email, project string

	cmd := &cobra.Command{
		Use:   "reassign",
		Short: "Rebalance task assignments for an owner's projects",
		Long: `Moves tasks from team members over capacity to members with free capacity.

Without --project every project owned by --email is rebalanced. High priority and Done
tasks are never moved.`,
		Example: `  taskflow-admin reassign --email owner@example.com
  taskflow-admin reassign --email owner@example.com --project 2f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var projectID *uuid.UUID
			if project != "" {
				id, err := uuid.Parse(project)
				if err != nil {
					return fmt.Errorf("invalid project id %q: %w", project, err)
				}
				projectID = &id
			}

			ctx := cmd.Context()
			rt, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			owner, err := rt.users.GetByEmail(ctx, email)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("no user found with email: %s", email)
				}
				return fmt.Errorf("failed to look up user: %w", err)
			}

			moved, err := rt.rebalancer.Rebalance(ctx, owner.ID, projectID)
			printMoves(cmd, moved)
			if err != nil {
				return fmt.Errorf("reassignment stopped after %d moves: %w", len(moved), err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the owning user")
	cmd.Flags().StringVar(&project, "project", "", "limit to one project id")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func printMoves(cmd *cobra.Command, moved []models.Task) {
	out := cmd.OutOrStdout()
	for _, task := range moved {
		fmt.Fprintf(out, "%s\t%s\t%q -> %s\n", task.ProjectID, task.ID, task.Title, task.AssigneeName())
	}
	fmt.Fprintf(out, "Reassigned %d tasks\n", len(moved))
}
