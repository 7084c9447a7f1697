package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

//go:embed migrations/*.sql
var postgresFS embed.FS

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db  *sql.DB
	dsn string
}

// NewPostgresStore opens the database, verifies connectivity, and applies
// the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db, dsn: dsn}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) migrate() error {
	schema, err := postgresFS.ReadFile("migrations/001_postgres_schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// SaveRun persists one run: the run row, every namespace record, and the
// per-foundation trend aggregates, in a single transaction.
func (s *PostgresStore) SaveRun(ctx context.Context, snapshot *models.FoundationSnapshot, trend *models.TrendReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runQuery := `
		INSERT INTO runs (
			run_id, generated_at, rule_table_version,
			files_read, files_skipped, records_valid, records_dropped,
			enrichment_skipped, baseline_run
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	q := snapshot.Quality
	if _, err := tx.ExecContext(ctx, runQuery,
		snapshot.RunID, snapshot.GeneratedAt, snapshot.RuleTableVersion,
		q.FilesRead, q.FilesSkipped, q.RecordsValid, q.RecordsDropped,
		q.EnrichmentSkipped, q.BaselineRun,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	recordQuery := `
		INSERT INTO run_records (
			run_id, namespace, cluster, foundation, app_id, environment,
			is_system, is_active, data_quality,
			pod_count, running_pods, service_count, readiness_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	stmt, err := tx.PrepareContext(ctx, recordQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i := range snapshot.Records {
		rec := &snapshot.Records[i]
		var score sql.NullInt64
		if rec.Score != nil {
			score = sql.NullInt64{Int64: int64(rec.Score.Value), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			snapshot.RunID, rec.Namespace, rec.Cluster, rec.Foundation,
			rec.AppID, string(rec.Environment),
			rec.IsSystem, rec.IsActive, string(rec.DataQuality),
			rec.PodCount, rec.RunningPods, rec.ServiceCount, score,
		); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.Key(), err)
		}
	}

	if trend != nil {
		summaryQuery := `
			INSERT INTO trend_summaries (
				run_id, foundation,
				total_namespaces, active_namespaces, inactive_namespaces,
				average_score, bucket_80_100, bucket_60_79, bucket_40_59, bucket_0_39
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		for foundation, agg := range trend.Foundations {
			if _, err := tx.ExecContext(ctx, summaryQuery,
				snapshot.RunID, foundation,
				agg.Total, agg.Active, agg.Inactive,
				agg.AverageScore,
				agg.ScoreHistogram[0], agg.ScoreHistogram[1],
				agg.ScoreHistogram[2], agg.ScoreHistogram[3],
			); err != nil {
				return fmt.Errorf("failed to insert trend summary for %s: %w", foundation, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves one stored run summary.
func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*RunSummary, error) {
	query := `
		SELECT r.run_id, r.generated_at, r.rule_table_version,
			r.files_read, r.files_skipped, r.records_valid, r.records_dropped,
			r.enrichment_skipped, r.baseline_run,
			(SELECT COUNT(*) FROM run_records rr WHERE rr.run_id = r.run_id)
		FROM runs r
		WHERE r.run_id = $1
	`
	var run RunSummary
	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID, &run.GeneratedAt, &run.RuleTableVersion,
		&run.FilesRead, &run.FilesSkipped, &run.RecordsValid, &run.RecordsDropped,
		&run.EnrichmentSkipped, &run.BaselineRun,
		&run.RecordCount,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns retrieves recent runs, newest first. An empty foundation returns
// runs across all foundations.
func (s *PostgresStore) ListRuns(ctx context.Context, foundation string, limit int) ([]*RunSummary, error) {
	query := `
		SELECT r.run_id, r.generated_at, r.rule_table_version,
			r.files_read, r.files_skipped, r.records_valid, r.records_dropped,
			r.enrichment_skipped, r.baseline_run,
			(SELECT COUNT(*) FROM run_records rr WHERE rr.run_id = r.run_id)
		FROM runs r
		WHERE $1 = '' OR EXISTS (
			SELECT 1 FROM trend_summaries ts
			WHERE ts.run_id = r.run_id AND ts.foundation = $1
		)
		ORDER BY r.generated_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, foundation, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*RunSummary
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(
			&run.RunID, &run.GeneratedAt, &run.RuleTableVersion,
			&run.FilesRead, &run.FilesSkipped, &run.RecordsValid, &run.RecordsDropped,
			&run.EnrichmentSkipped, &run.BaselineRun,
			&run.RecordCount,
		); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// GetScoreTrend aggregates stored trend summaries into weekly readiness
// points for one foundation.
func (s *PostgresStore) GetScoreTrend(ctx context.Context, foundation string, weeks int) ([]*ScoreTrendPoint, error) {
	query := `
		SELECT date_trunc('week', r.generated_at) AS week,
			AVG(ts.average_score),
			MAX(ts.total_namespaces),
			MAX(ts.active_namespaces)
		FROM trend_summaries ts
		JOIN runs r ON r.run_id = ts.run_id
		WHERE ts.foundation = $1
			AND r.generated_at >= NOW() - ($2 * INTERVAL '1 week')
		GROUP BY week
		ORDER BY week
	`
	rows, err := s.db.QueryContext(ctx, query, foundation, weeks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []*ScoreTrendPoint
	for rows.Next() {
		var p ScoreTrendPoint
		if err := rows.Scan(&p.Week, &p.AverageScore, &p.TotalNamespaces, &p.ActiveNamespaces); err != nil {
			return nil, err
		}
		points = append(points, &p)
	}
	return points, rows.Err()
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
