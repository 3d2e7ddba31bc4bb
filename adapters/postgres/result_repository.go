package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"prsboot/domain/core"
	"prsboot/domain/stats"
)

// resultRow is the database shape of a result record. NaN values are stored
// as NULL.
type resultRow struct {
	ID             int64           `db:"id"`
	RunID          uuid.UUID       `db:"run_id"`
	PRSFile        string          `db:"prs_file"`
	Ancestry       string          `db:"ancestry"`
	ComparisonType string          `db:"comparison_type"`
	SpearmanRho    sql.NullFloat64 `db:"spearman_rho"`
	PValue         sql.NullFloat64 `db:"p_value"`
	CILower        sql.NullFloat64 `db:"ci_lower"`
	CIUpper        sql.NullFloat64 `db:"ci_upper"`
	BootstrapSE    sql.NullFloat64 `db:"bootstrap_se"`
	CreatedAt      time.Time       `db:"created_at"`
}

// ResultRepository mirrors result records into Postgres. The table is created
// by internal/migration.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Append inserts one record tagged with the run ID
func (r *ResultRepository) Append(ctx context.Context, runID core.RunID, record stats.ResultRecord) error {
	row, err := toRow(runID, record)
	if err != nil {
		return err
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO bootstrap_results (
			run_id, prs_file, ancestry, comparison_type,
			spearman_rho, p_value, ci_lower, ci_upper, bootstrap_se
		) VALUES (
			:run_id, :prs_file, :ancestry, :comparison_type,
			:spearman_rho, :p_value, :ci_lower, :ci_upper, :bootstrap_se
		)`, row)
	if err != nil {
		return fmt.Errorf("failed to insert bootstrap result: %w", err)
	}
	return nil
}

// List returns all records, oldest first
func (r *ResultRepository) List(ctx context.Context) ([]stats.ResultRecord, error) {
	var rows []resultRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, run_id, prs_file, ancestry, comparison_type,
			   spearman_rho, p_value, ci_lower, ci_upper, bootstrap_se, created_at
		FROM bootstrap_results
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bootstrap results: %w", err)
	}

	records := make([]stats.ResultRecord, len(rows))
	for i, row := range rows {
		records[i] = fromRow(row)
	}
	return records, nil
}

func toRow(runID core.RunID, record stats.ResultRecord) (resultRow, error) {
	id, err := uuid.Parse(runID.String())
	if err != nil {
		return resultRow{}, fmt.Errorf("invalid run ID %q: %w", runID, err)
	}
	return resultRow{
		RunID:          id,
		PRSFile:        record.PRSFile,
		Ancestry:       string(record.Ancestry),
		ComparisonType: string(record.ComparisonType),
		SpearmanRho:    nullable(record.SpearmanRho),
		PValue:         nullable(record.PValue),
		CILower:        nullable(record.CI.Lower),
		CIUpper:        nullable(record.CI.Upper),
		BootstrapSE:    nullable(record.BootstrapSE),
	}, nil
}

func fromRow(row resultRow) stats.ResultRecord {
	return stats.ResultRecord{
		PRSFile:        row.PRSFile,
		Ancestry:       core.ColumnName(row.Ancestry),
		ComparisonType: stats.ComparisonType(row.ComparisonType),
		SpearmanRho:    orNaN(row.SpearmanRho),
		PValue:         orNaN(row.PValue),
		CI: stats.ConfidenceInterval{
			Lower: orNaN(row.CILower),
			Upper: orNaN(row.CIUpper),
		},
		BootstrapSE: orNaN(row.BootstrapSE),
	}
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
