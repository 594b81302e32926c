package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/store"
)

// DashboardSummary is what the home page shows.
type DashboardSummary struct {
	Period         string                  `json:"period,omitempty"`
	Counts         store.DashboardCounts   `json:"counts"`
	Classes        []store.ClassOccupancy  `json:"classes"`
	Gradebooks     store.GradebookCounts   `json:"gradebooks"`
	RecentActivity []*domain.ActivityEntry `json:"recent_activity"`
}

// DashboardService assembles read-only aggregates.
type DashboardService struct {
	dashboard     store.DashboardStore
	activity      *ActivityRecorder
	logger        *slog.Logger
	activityLimit int
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(
	dashboard store.DashboardStore,
	activity *ActivityRecorder,
	logger *slog.Logger,
	opts ...Option,
) (*DashboardService, error) {
	if err := requireDeps(dep{"dashboard", dashboard}); err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, domain.NewValidationError("activity", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := applyOptions(opts)
	return &DashboardService{
		dashboard:     dashboard,
		activity:      activity,
		logger:        logger.With(slog.String("component", "dashboard_service")),
		activityLimit: o.activityLimit,
	}, nil
}

// Summary runs the dashboard queries concurrently. An empty period covers
// every period.
func (s *DashboardService) Summary(ctx context.Context, period string) (*DashboardSummary, error) {
	summary := &DashboardSummary{Period: period}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.dashboard.Counts(gctx)
		if err != nil {
			return NewServiceError("dashboard", "summary", "failed to count records", err)
		}
		summary.Counts = counts
		return nil
	})
	g.Go(func() error {
		classes, err := s.dashboard.ClassOccupancy(gctx, period)
		if err != nil {
			return NewServiceError("dashboard", "summary", "failed to read class occupancy", err)
		}
		summary.Classes = classes
		return nil
	})
	g.Go(func() error {
		gradebooks, err := s.dashboard.GradebookCounts(gctx, period)
		if err != nil {
			return NewServiceError("dashboard", "summary", "failed to count gradebooks", err)
		}
		summary.Gradebooks = gradebooks
		return nil
	})
	g.Go(func() error {
		entries, err := s.activity.ListRecent(gctx, s.activityLimit)
		if err != nil {
			return err
		}
		summary.RecentActivity = entries
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

// RecentActivity returns up to limit activity entries, newest first. A
// limit of zero or less uses the configured default.
func (s *DashboardService) RecentActivity(ctx context.Context, limit int) ([]*domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = s.activityLimit
	}
	return s.activity.ListRecent(ctx, limit)
}
