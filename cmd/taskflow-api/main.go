package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/taskflow-api/internal/config"
	"github.com/dimitrije/taskflow-api/internal/database"
	"github.com/dimitrije/taskflow-api/internal/handlers"
	"github.com/dimitrije/taskflow-api/internal/logger"
	authmw "github.com/dimitrije/taskflow-api/internal/middleware"
	"github.com/dimitrije/taskflow-api/internal/services"
	"github.com/dimitrije/taskflow-api/internal/sse"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logr.Fatal("failed to run migrations", zap.Error(err))
	}

	hub := sse.NewHub(logr.Named("sse"))
	go hub.Run(ctx)

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db, cfg.BcryptCost)
	tokenService := services.NewTokenService(db)
	teamService := services.NewTeamService(db)
	projectService := services.NewProjectService(db)
	taskService := services.NewTaskService(db)
	activityService := services.NewActivityService(db)
	dashboardService := services.NewDashboardService(db, teamService, activityService)
	workloadService := services.NewWorkloadService(projectService, teamService, taskService, hub, logr.Named("rebalance"))

	authHandler := handlers.NewAuthHandler(userService, tokenService, jwtService, logr)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService, logr)
	projectHandler := handlers.NewProjectHandler(projectService, workloadService, logr)
	taskHandler := handlers.NewTaskHandler(taskService, workloadService, hub, logr)
	activityHandler := handlers.NewActivityHandler(activityService, logr)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, logr)
	sseHandler := handlers.NewSSEHandler(hub, projectService, logr)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)

	protected.Get("/teams", teamHandler.List)
	protected.Post("/teams", teamHandler.Create)
	protected.Get("/teams/:id", teamHandler.Get)
	protected.Patch("/teams/:id", teamHandler.Update)
	protected.Delete("/teams/:id", teamHandler.Delete)
	protected.Post("/teams/:id/members", teamHandler.AddMember)
	protected.Patch("/teams/:id/members/:memberIndex", teamHandler.UpdateMember)
	protected.Delete("/teams/:id/members/:memberIndex", teamHandler.DeleteMember)

	protected.Get("/projects", projectHandler.List)
	protected.Post("/projects", projectHandler.Create)
	protected.Get("/projects/:id", projectHandler.Get)
	protected.Patch("/projects/:id", projectHandler.Update)
	protected.Delete("/projects/:id", projectHandler.Delete)
	protected.Get("/projects/:id/members", projectHandler.Members)
	protected.Get("/projects/:id/events", sseHandler.Connect)

	protected.Get("/tasks", taskHandler.List)
	protected.Post("/tasks", taskHandler.Create)
	protected.Post("/tasks/reassign", taskHandler.Reassign)
	protected.Get("/tasks/:id", taskHandler.Get)
	protected.Patch("/tasks/:id", taskHandler.Update)
	protected.Delete("/tasks/:id", taskHandler.Delete)

	protected.Get("/activity-logs", activityHandler.List)
	protected.Get("/dashboard", dashboardHandler.Get)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := tokenService.CleanupExpired(ctx)
				if err != nil {
					logr.Warn("failed to purge expired refresh tokens", zap.Error(err))
					continue
				}
				logr.Debug("purged expired refresh tokens", zap.Int64("count", n))
			case <-ctx.Done():
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
