package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dimitrije/taskflow-api/internal/config"
	"github.com/dimitrije/taskflow-api/internal/database"
	"github.com/dimitrije/taskflow-api/internal/logger"
	"github.com/dimitrije/taskflow-api/internal/services"
)

func main() {
	if err := newRootCmd(openDeps).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openDeps wires the same services the HTTP server uses, minus live notifications:
// connected browsers pick CLI moves up on their next fetch.
func openDeps(ctx context.Context) (*deps, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logr, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	teamService := services.NewTeamService(db)
	workload := services.NewWorkloadService(
		services.NewProjectService(db),
		teamService,
		services.NewTaskService(db),
		nil,
		logr.Named("rebalance"),
	)

	rt := &deps{
		migrator:   db,
		users:      services.NewUserService(db, cfg.BcryptCost),
		rebalancer: workload,
	}
	closeFn := func() {
		db.Close()
		_ = logr.Sync()
	}
	return rt, closeFn, nil
}
