package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/guto-escola/guto-api/internal/api"
	"github.com/guto-escola/guto-api/internal/config"
	"github.com/guto-escola/guto-api/internal/platform/postgres"
	"github.com/guto-escola/guto-api/internal/service"
	"github.com/guto-escola/guto-api/internal/service/auth"
)

// application holds the shared dependencies and releases them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService auth.JWTService

	registry    *service.RegistryService
	enrollments *service.EnrollmentService
	grading     *service.GradingService
	gradebooks  *service.GradebookService
	dashboard   *service.DashboardService
}

// newStores wires every store to the Postgres implementation.
func newStores(db *sql.DB, logger *slog.Logger) service.Stores {
	return service.Stores{
		Students:        postgres.NewPostgresStudentStore(db, logger),
		Staff:           postgres.NewPostgresStaffStore(db, logger),
		Classes:         postgres.NewPostgresClassStore(db, logger),
		Enrollments:     postgres.NewPostgresEnrollmentStore(db, logger),
		Subjects:        postgres.NewPostgresSubjectStore(db, logger),
		Divisions:       postgres.NewPostgresPeriodDivisionStore(db, logger),
		Concepts:        postgres.NewPostgresConceptStore(db, logger),
		EvaluationTypes: postgres.NewPostgresEvaluationTypeStore(db, logger),
		Evaluations:     postgres.NewPostgresEvaluationStore(db, logger),
		Grades:          postgres.NewPostgresGradeStore(db, logger),
		Gradebooks:      postgres.NewPostgresGradebookStore(db, logger),
		Lessons:         postgres.NewPostgresLessonStore(db, logger),
		Activity:        postgres.NewPostgresActivityStore(db, logger),
		Dashboard:       postgres.NewPostgresDashboardStore(db, logger),
	}
}

// newApplication creates the services on top of an established connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	stores := newStores(db, logger)
	opts := []service.Option{
		service.WithPendingPreview(cfg.Grading.PendingReportLimit),
		service.WithDefaultCapacity(cfg.Grading.DefaultCapacity),
	}

	activity, err := service.NewActivityRecorder(stores.Activity, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity recorder: %w", err)
	}
	if app.registry, err = service.NewRegistryService(db, stores, activity, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create registry service: %w", err)
	}
	if app.enrollments, err = service.NewEnrollmentService(db, stores, activity, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create enrollment service: %w", err)
	}
	if app.grading, err = service.NewGradingService(db, stores, activity, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create grading service: %w", err)
	}
	if app.gradebooks, err = service.NewGradebookService(db, stores, activity, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create gradebook service: %w", err)
	}
	if app.dashboard, err = service.NewDashboardService(stores.Dashboard, activity, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create dashboard service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// handlers builds the HTTP handlers from the services.
func (app *application) handlers() api.Handlers {
	return api.Handlers{
		Registry:   api.NewRegistryHandler(app.registry, app.logger),
		Classes:    api.NewClassHandler(app.registry, app.enrollments, app.logger),
		Grading:    api.NewGradingHandler(app.grading, app.logger),
		Gradebooks: api.NewGradebookHandler(app.gradebooks, app.logger),
		Dashboard:  api.NewDashboardHandler(app.dashboard, app.logger),
	}
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
