package service

import (
	"time"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/store"
)

// Stores bundles the persistence dependencies shared by the services. Each
// constructor checks only the stores it uses.
type Stores struct {
	Students        store.StudentStore
	Staff           store.StaffStore
	Classes         store.ClassStore
	Enrollments     store.EnrollmentStore
	Subjects        store.SubjectStore
	Divisions       store.PeriodDivisionStore
	Concepts        store.ConceptStore
	EvaluationTypes store.EvaluationTypeStore
	Evaluations     store.EvaluationStore
	Grades          store.GradeStore
	Gradebooks      store.GradebookStore
	Lessons         store.LessonStore
	Activity        store.ActivityStore
	Dashboard       store.DashboardStore
}

type dep struct {
	name  string
	value any
}

// requireDeps returns a validation error naming the first missing dependency.
// Interface values are nil only when unset, so pointers are checked by callers.
func requireDeps(deps ...dep) error {
	for _, d := range deps {
		if d.value == nil {
			return domain.NewValidationError(d.name, "cannot be nil", domain.ErrValidation)
		}
	}
	return nil
}

type options struct {
	now             func() time.Time
	pendingPreview  int
	defaultCapacity int
	activityLimit   int
}

func defaultOptions() options {
	return options{
		now:             func() time.Time { return time.Now().UTC() },
		pendingPreview:  domain.DefaultPendingPreview,
		defaultCapacity: domain.DefaultClassCapacity,
		activityLimit:   20,
	}
}

// Option tunes a service.
type Option func(*options)

// WithClock replaces the wall clock used to stamp writes.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithPendingPreview sets how many pending grades a close failure lists in
// its message. The full list is always returned.
func WithPendingPreview(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pendingPreview = n
		}
	}
}

// WithDefaultCapacity sets the capacity of classes created without one.
func WithDefaultCapacity(n int) Option {
	return func(o *options) {
		if n > 0 && n <= domain.MaxClassCapacity {
			o.defaultCapacity = n
		}
	}
}

// WithActivityLimit sets how many entries the dashboard shows by default.
func WithActivityLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.activityLimit = n
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
