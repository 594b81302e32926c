package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// PostgresPeriodDivisionStore implements store.PeriodDivisionStore.
type PostgresPeriodDivisionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPeriodDivisionStore creates a period division store.
func NewPostgresPeriodDivisionStore(db store.DBTX, logger *slog.Logger) *PostgresPeriodDivisionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPeriodDivisionStore{
		db:     db,
		logger: logger.With(slog.String("component", "period_division_store")),
	}
}

var _ store.PeriodDivisionStore = (*PostgresPeriodDivisionStore)(nil)

const divisionColumns = `id, name, kind, period, sort_order, start_date, end_date, active`

func scanDivision(row rowScanner) (*domain.PeriodDivision, error) {
	var d domain.PeriodDivision
	var kind string
	if err := row.Scan(&d.ID, &d.Name, &kind, &d.Period, &d.Order, &d.StartDate, &d.EndDate, &d.Active); err != nil {
		return nil, err
	}
	d.Kind = domain.DivisionKind(kind)
	return &d, nil
}

// Create implements store.PeriodDivisionStore.Create.
func (s *PostgresPeriodDivisionStore) Create(ctx context.Context, division *domain.PeriodDivision) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := division.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO period_divisions (id, name, kind, period, sort_order, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		division.ID, division.Name, division.Kind, division.Period, division.Order,
		division.StartDate, division.EndDate, division.Active,
	)
	if err != nil {
		log.Error("failed to create period division",
			slog.String("error", err.Error()),
			slog.String("period", division.Period),
			slog.Int("order", division.Order))
		return MapUniqueViolation(err, "period division", "period_divisions_period_order_key", store.ErrDivisionOrderTaken)
	}

	log.Info("period division created",
		slog.String("division_id", division.ID.String()),
		slog.String("period", division.Period))
	return nil
}

// GetByID implements store.PeriodDivisionStore.GetByID.
func (s *PostgresPeriodDivisionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PeriodDivision, error) {
	d, err := scanDivision(s.db.QueryRowContext(ctx, `SELECT `+divisionColumns+` FROM period_divisions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDivisionNotFound
		}
		return nil, MapError(err)
	}
	return d, nil
}

// ListByPeriod implements store.PeriodDivisionStore.ListByPeriod.
func (s *PostgresPeriodDivisionStore) ListByPeriod(ctx context.Context, period string, activeOnly bool) ([]*domain.PeriodDivision, error) {
	query := `SELECT ` + divisionColumns + ` FROM period_divisions WHERE period = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY sort_order`

	rows, err := s.db.QueryContext(ctx, query, period)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list period divisions",
			slog.String("error", err.Error()),
			slog.String("period", period))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var divisions []*domain.PeriodDivision
	for rows.Next() {
		d, err := scanDivision(rows)
		if err != nil {
			return nil, err
		}
		divisions = append(divisions, d)
	}
	return divisions, rows.Err()
}

// WithTx implements store.PeriodDivisionStore.WithTx.
func (s *PostgresPeriodDivisionStore) WithTx(tx *sql.Tx) store.PeriodDivisionStore {
	return &PostgresPeriodDivisionStore{db: tx, logger: s.logger}
}

// PostgresConceptStore implements store.ConceptStore.
type PostgresConceptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresConceptStore creates a concept store.
func NewPostgresConceptStore(db store.DBTX, logger *slog.Logger) *PostgresConceptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresConceptStore{
		db:     db,
		logger: logger.With(slog.String("component", "concept_store")),
	}
}

var _ store.ConceptStore = (*PostgresConceptStore)(nil)

func scanConcept(row rowScanner) (*domain.Concept, error) {
	var c domain.Concept
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.NumericValue, &c.Active); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create implements store.ConceptStore.Create.
func (s *PostgresConceptStore) Create(ctx context.Context, concept *domain.Concept) error {
	if err := concept.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO concepts (id, name, description, numeric_value, active)
		VALUES ($1, $2, $3, $4, $5)`,
		concept.ID, concept.Name, concept.Description, concept.NumericValue, concept.Active,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create concept",
			slog.String("error", err.Error()),
			slog.String("name", concept.Name))
		return MapUniqueViolation(err, "concept", "concepts_name_key", store.ErrConceptNameTaken)
	}
	return nil
}

// GetByID implements store.ConceptStore.GetByID.
func (s *PostgresConceptStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Concept, error) {
	c, err := scanConcept(s.db.QueryRowContext(ctx,
		`SELECT id, name, description, numeric_value, active FROM concepts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrConceptNotFound
		}
		return nil, MapError(err)
	}
	return c, nil
}

// List implements store.ConceptStore.List.
func (s *PostgresConceptStore) List(ctx context.Context, activeOnly bool) ([]*domain.Concept, error) {
	query := `SELECT id, name, description, numeric_value, active FROM concepts`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY numeric_value DESC, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var concepts []*domain.Concept
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, err
		}
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

// WithTx implements store.ConceptStore.WithTx.
func (s *PostgresConceptStore) WithTx(tx *sql.Tx) store.ConceptStore {
	return &PostgresConceptStore{db: tx, logger: s.logger}
}

// PostgresEvaluationTypeStore implements store.EvaluationTypeStore.
type PostgresEvaluationTypeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEvaluationTypeStore creates an evaluation type store.
func NewPostgresEvaluationTypeStore(db store.DBTX, logger *slog.Logger) *PostgresEvaluationTypeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEvaluationTypeStore{
		db:     db,
		logger: logger.With(slog.String("component", "evaluation_type_store")),
	}
}

var _ store.EvaluationTypeStore = (*PostgresEvaluationTypeStore)(nil)

func scanEvaluationType(row rowScanner) (*domain.EvaluationType, error) {
	var t domain.EvaluationType
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.DefaultWeight, &t.Active); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create implements store.EvaluationTypeStore.Create.
func (s *PostgresEvaluationTypeStore) Create(ctx context.Context, t *domain.EvaluationType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluation_types (id, name, description, default_weight, active)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.Description, t.DefaultWeight, t.Active,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create evaluation type",
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.EvaluationTypeStore.GetByID.
func (s *PostgresEvaluationTypeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.EvaluationType, error) {
	t, err := scanEvaluationType(s.db.QueryRowContext(ctx,
		`SELECT id, name, description, default_weight, active FROM evaluation_types WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEvaluationTypeNotFound
		}
		return nil, MapError(err)
	}
	return t, nil
}

// List implements store.EvaluationTypeStore.List.
func (s *PostgresEvaluationTypeStore) List(ctx context.Context, activeOnly bool) ([]*domain.EvaluationType, error) {
	query := `SELECT id, name, description, default_weight, active FROM evaluation_types`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var types []*domain.EvaluationType
	for rows.Next() {
		t, err := scanEvaluationType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// WithTx implements store.EvaluationTypeStore.WithTx.
func (s *PostgresEvaluationTypeStore) WithTx(tx *sql.Tx) store.EvaluationTypeStore {
	return &PostgresEvaluationTypeStore{db: tx, logger: s.logger}
}
