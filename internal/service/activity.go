package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// activitySavepoint names the savepoint wrapping activity log writes.
const activitySavepoint = "activity_log"

// ActivityRecorder appends entries to the activity log on behalf of the
// other services. Recording never fails the calling operation.
type ActivityRecorder struct {
	activity store.ActivityStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewActivityRecorder creates an ActivityRecorder.
func NewActivityRecorder(activity store.ActivityStore, logger *slog.Logger, opts ...Option) (*ActivityRecorder, error) {
	if err := requireDeps(dep{"activity", activity}); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := applyOptions(opts)
	return &ActivityRecorder{
		activity: activity,
		logger:   logger.With(slog.String("component", "activity_recorder")),
		now:      o.now,
	}, nil
}

// Record appends an entry. With a transaction the write happens under a
// savepoint, so it commits together with the caller's changes while a failed
// write is rolled back on its own. Without one the entry is written directly.
// Errors are logged and dropped.
func (r *ActivityRecorder) Record(
	ctx context.Context,
	tx *sql.Tx,
	actor domain.Actor,
	action domain.ActionKind,
	module domain.Module,
	objectName, objectID, description string,
) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	entry, err := domain.NewActivityEntry(actor, action, module, objectName, objectID, description, r.now())
	if err != nil {
		log.Warn("activity entry rejected",
			slog.String("error", err.Error()),
			slog.String("action", string(action)),
			slog.String("module", string(module)))
		return
	}

	if tx == nil {
		err = r.activity.Append(ctx, entry)
	} else {
		err = store.WithSavepoint(ctx, tx, activitySavepoint, func(ctx context.Context, tx *sql.Tx) error {
			return r.activity.WithTx(tx).Append(ctx, entry)
		})
	}
	if err != nil {
		log.Error("failed to record activity",
			slog.String("error", err.Error()),
			slog.String("action", string(action)),
			slog.String("module", string(module)),
			slog.String("object_id", objectID))
	}
}

// ListRecent returns up to limit entries, newest first.
func (r *ActivityRecorder) ListRecent(ctx context.Context, limit int) ([]*domain.ActivityEntry, error) {
	entries, err := r.activity.ListRecent(ctx, limit)
	if err != nil {
		return nil, NewServiceError("activity", "list_recent", "failed to list activity", err)
	}
	return entries, nil
}
