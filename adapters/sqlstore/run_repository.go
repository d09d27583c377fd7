package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"simlab/domain/core"
	"simlab/domain/run"
	"simlab/domain/sample"
	"simlab/internal/errors"
	"simlab/ports"
)

// RunRepositoryImpl implements ports.RunRepository over sqlx
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a run repository on an opened, migrated database
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

type runRow struct {
	ID              string    `db:"id"`
	Seed            string    `db:"seed"` // uint64 does not fit BIGINT
	ConfidenceLevel float64   `db:"confidence_level"`
	DesignHash      string    `db:"design_hash"`
	OutputHash      string    `db:"output_hash"`
	Draws           int64     `db:"draws"`
	Fingerprint     string    `db:"fingerprint"`
	CreatedAt       time.Time `db:"created_at"`
}

func toRunRow(m run.Manifest) runRow {
	return runRow{
		ID:              m.RunID.String(),
		Seed:            strconv.FormatUint(m.Seed, 10),
		ConfidenceLevel: m.ConfidenceLevel,
		DesignHash:      m.DesignHash.String(),
		OutputHash:      m.OutputHash.String(),
		Draws:           int64(m.Draws),
		Fingerprint:     m.Fingerprint.String(),
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

func (r runRow) manifest() (run.Manifest, error) {
	seed, err := strconv.ParseUint(r.Seed, 10, 64)
	if err != nil {
		return run.Manifest{}, err
	}
	return run.Manifest{
		RunID:           core.RunID(r.ID),
		Seed:            seed,
		ConfidenceLevel: r.ConfidenceLevel,
		DesignHash:      core.Hash(r.DesignHash),
		OutputHash:      core.Hash(r.OutputHash),
		Draws:           uint64(r.Draws),
		Fingerprint:     core.Hash(r.Fingerprint),
		CreatedAt:       r.CreatedAt.UTC(),
	}, nil
}

type summaryRow struct {
	RunID       string          `db:"run_id"`
	TableName   string          `db:"table_name"`
	Position    int             `db:"position"`
	Participant int             `db:"participant"`
	Condition   string          `db:"condition_label"`
	Estimate    float64         `db:"estimate"`
	N           int             `db:"n"`
	CILower     sql.NullFloat64 `db:"ci_lower"`
	CIUpper     sql.NullFloat64 `db:"ci_upper"`
	CILevel     sql.NullFloat64 `db:"ci_level"`
}

func (r summaryRow) summary() sample.Summary {
	s := sample.Summary{
		Key:      sample.GroupKey{Participant: r.Participant, Condition: r.Condition},
		Estimate: r.Estimate,
		N:        r.N,
	}
	if r.CILower.Valid && r.CIUpper.Valid {
		s.Interval = &sample.Interval{Lower: r.CILower.Float64, Upper: r.CIUpper.Float64, Level: r.CILevel.Float64}
	}
	return s
}

// SaveRun inserts a run manifest
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, m run.Manifest) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "refusing to save invalid manifest")
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO lab_runs (id, seed, confidence_level, design_hash, output_hash, draws, fingerprint, created_at)
		VALUES (:id, :seed, :confidence_level, :design_hash, :output_hash, :draws, :fingerprint, :created_at)
	`, toRunRow(m))
	if err != nil {
		return errors.DatabaseError("failed to insert run "+m.RunID.String(), err)
	}
	return nil
}

// GetRun retrieves a run manifest by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*run.Manifest, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, seed, confidence_level, design_hash, output_hash, draws, fingerprint, created_at
		FROM lab_runs
		WHERE id = ?
	`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("run " + id.String())
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to get run "+id.String(), err)
	}

	m, err := row.manifest()
	if err != nil {
		return nil, errors.DatabaseError("corrupt seed for run "+id.String(), err)
	}
	return &m, nil
}

// ListRuns returns runs newest first. A non-positive limit returns all runs.
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit, offset int) ([]run.Manifest, error) {
	query := `
		SELECT id, seed, confidence_level, design_hash, output_hash, draws, fingerprint, created_at
		FROM lab_runs
		ORDER BY created_at DESC, id DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	out := make([]run.Manifest, 0, len(rows))
	for _, row := range rows {
		m, err := row.manifest()
		if err != nil {
			return nil, errors.DatabaseError("corrupt seed for run "+row.ID, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// SaveSummaries replaces the stored rows of one table of a run
func (r *RunRepositoryImpl) SaveSummaries(ctx context.Context, id core.RunID, table string, rows []sample.Summary) error {
	if table == "" {
		return errors.Wrap(core.NewInvalidInputError("table", "must not be empty"), "save summaries")
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM lab_summaries WHERE run_id = ? AND table_name = ?"), id.String(), table); err != nil {
		return errors.DatabaseError("failed to clear summaries", err)
	}

	for i, s := range rows {
		row := summaryRow{
			RunID:       id.String(),
			TableName:   table,
			Position:    i,
			Participant: s.Key.Participant,
			Condition:   s.Key.Condition,
			Estimate:    s.Estimate,
			N:           s.N,
		}
		if s.Interval != nil {
			row.CILower = sql.NullFloat64{Float64: s.Interval.Lower, Valid: true}
			row.CIUpper = sql.NullFloat64{Float64: s.Interval.Upper, Valid: true}
			row.CILevel = sql.NullFloat64{Float64: s.Interval.Level, Valid: true}
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO lab_summaries (run_id, table_name, position, participant, condition_label, estimate, n, ci_lower, ci_upper, ci_level)
			VALUES (:run_id, :table_name, :position, :participant, :condition_label, :estimate, :n, :ci_lower, :ci_upper, :ci_level)
		`, row)
		if err != nil {
			return errors.DatabaseError("failed to insert summary for "+table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit summaries", err)
	}
	return nil
}

// ListSummaries returns one table of a run in its saved order
func (r *RunRepositoryImpl) ListSummaries(ctx context.Context, id core.RunID, table string) ([]sample.Summary, error) {
	var rows []summaryRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT run_id, table_name, position, participant, condition_label, estimate, n, ci_lower, ci_upper, ci_level
		FROM lab_summaries
		WHERE run_id = ? AND table_name = ?
		ORDER BY position
	`), id.String(), table)
	if err != nil {
		return nil, errors.DatabaseError("failed to list summaries", err)
	}

	out := make([]sample.Summary, len(rows))
	for i, row := range rows {
		out[i] = row.summary()
	}
	return out, nil
}
