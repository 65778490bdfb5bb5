package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadval-cli/internal/db"
	"github.com/sells-group/leadval-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool        db.Pool
	closeFn     func()
	highQuality int
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"start_run":    `INSERT INTO etl_runs (id, status, started_at) VALUES ($1, $2, $3)`,
	"complete_run": `UPDATE etl_runs SET status = $1, completed_at = $2, tasks_extracted = $3, validations_parsed = $4, high_quality_leads = $5, low_quality_leads = $6, parse_errors = $7 WHERE id = $8`,
	"fail_run":     `UPDATE etl_runs SET status = $1, completed_at = $2, error = $3 WHERE id = $4`,
}

// NewPostgres creates a PostgresStore with a connection pool. highQuality is
// the 0-10 score at or above which summary counts treat a lead as high
// quality; values below 1 fall back to 7.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig, highQuality int) (*PostgresStore, error) {
	if highQuality < 1 {
		highQuality = defaultHighQuality
	}
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, highQuality: highQuality}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS validation_tasks (
	id                 TEXT PRIMARY KEY,
	who_id             TEXT NOT NULL DEFAULT '',
	what_id            TEXT NOT NULL DEFAULT '',
	subject            TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	lead_source        TEXT NOT NULL DEFAULT '',
	lead_company       TEXT NOT NULL DEFAULT '',
	lead_email         TEXT NOT NULL DEFAULT '',
	created_date       TIMESTAMPTZ,
	last_modified_date TIMESTAMPTZ,
	extracted_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS parsed_validations (
	task_id                         TEXT PRIMARY KEY,
	who_id                          TEXT NOT NULL DEFAULT '',
	subject                         TEXT NOT NULL DEFAULT '',
	lead_source                     TEXT NOT NULL DEFAULT '',
	lead_score                      INTEGER,
	quality_score                   INTEGER,
	data_quality                    INTEGER,
	fraud_score                     INTEGER,
	recommendation                  TEXT,
	quality_level                   TEXT,
	fraud_risk                      TEXT,
	market_segment                  TEXT,
	phone_valid                     BOOLEAN,
	phone_carrier                   TEXT,
	phone_type                      TEXT,
	phone_national_format           TEXT,
	email_valid                     BOOLEAN,
	email_sendable                  BOOLEAN,
	bounce_likely                   BOOLEAN,
	gibberish_score                 TEXT,
	total_emails                    INTEGER,
	valid_emails                    INTEGER,
	sendable_emails                 INTEGER,
	email_quality_score             INTEGER,
	api_lead_score                  INTEGER,
	api_quality_score               INTEGER,
	api_fraud_score                 INTEGER,
	api_data_quality_score          INTEGER,
	api_recommendation              TEXT,
	api_quality_level               TEXT,
	api_fraud_risk_level            TEXT,
	api_market_segment              TEXT,
	api_phone_valid                 BOOLEAN,
	api_phone_carrier               TEXT,
	api_phone_location              TEXT,
	api_email_valid                 BOOLEAN,
	api_email_sendable              BOOLEAN,
	api_bounce_likely               BOOLEAN,
	api_gibberish_email             BOOLEAN,
	api_fake_phone                  BOOLEAN,
	api_fake_lead                   BOOLEAN,
	api_disposable_email            BOOLEAN,
	api_business_strength_score     INTEGER,
	api_first_name                  TEXT,
	api_last_name                   TEXT,
	api_company                     TEXT,
	api_email                       TEXT,
	api_phone                       TEXT,
	api_state                       TEXT,
	api_postal_code                 TEXT,
	api_total_emails                INTEGER,
	api_valid_emails                INTEGER,
	api_sendable_emails             INTEGER,
	api_email_summary_quality_score INTEGER,
	api_quality_factors             TEXT,
	api_fraud_factors               TEXT,
	api_summary_notes               TEXT,
	lead_company                    TEXT NOT NULL DEFAULT '',
	lead_email                      TEXT NOT NULL DEFAULT '',
	raw_description                 TEXT NOT NULL DEFAULT '',
	raw_api_response                JSONB NOT NULL DEFAULT '{}',
	parse_error                     TEXT NOT NULL DEFAULT '',
	created_date                    TIMESTAMPTZ,
	last_modified_date              TIMESTAMPTZ,
	parsed_at                       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS etl_runs (
	id                 TEXT PRIMARY KEY,
	status             TEXT NOT NULL DEFAULT 'running',
	started_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at       TIMESTAMPTZ,
	tasks_extracted    INTEGER NOT NULL DEFAULT 0,
	validations_parsed INTEGER NOT NULL DEFAULT 0,
	high_quality_leads INTEGER NOT NULL DEFAULT 0,
	low_quality_leads  INTEGER NOT NULL DEFAULT 0,
	parse_errors       INTEGER NOT NULL DEFAULT 0,
	error              TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_tasks_last_modified ON validation_tasks(last_modified_date DESC);
CREATE INDEX IF NOT EXISTS idx_validations_lead_source ON parsed_validations(lead_source);
CREATE INDEX IF NOT EXISTS idx_validations_quality ON parsed_validations(api_quality_score, quality_score);
CREATE INDEX IF NOT EXISTS idx_validations_created ON parsed_validations(created_date DESC);
CREATE INDEX IF NOT EXISTS idx_etl_runs_started ON etl_runs(started_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertTasks(ctx context.Context, tasks []model.Task) (int64, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, taskRow(t))
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "validation_tasks",
		Columns:      taskColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: upsert tasks")
}

func (s *PostgresStore) LoadTasks(ctx context.Context, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = 10000
	}

	query := fmt.Sprintf(
		`SELECT %s FROM validation_tasks ORDER BY last_modified_date DESC LIMIT $1`,
		strings.Join(taskColumns, ", "),
	)
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load tasks")
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan task")
		}
		tasks = append(tasks, *t)
	}
	return tasks, eris.Wrap(rows.Err(), "postgres: load tasks iterate")
}

func (s *PostgresStore) UpsertValidations(ctx context.Context, recs []model.ParsedValidation) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		row, err := validationRow(rec)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "parsed_validations",
		Columns:      validationColumns,
		ConflictKeys: []string{"task_id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: upsert validations")
}

func (s *PostgresStore) ListValidations(ctx context.Context, filter ValidationFilter) ([]model.ParsedValidation, error) {
	query := fmt.Sprintf(`SELECT %s FROM parsed_validations WHERE true`, strings.Join(validationColumns, ", "))
	args := []any{}
	argIdx := 1

	if filter.LeadSource != "" {
		query += fmt.Sprintf(` AND lead_source = $%d`, argIdx)
		args = append(args, filter.LeadSource)
		argIdx++
	}
	switch filter.Errors {
	case ErrorsOnly:
		query += ` AND parse_error <> ''`
	case ErrorsNone:
		query += ` AND parse_error = ''`
	}
	query += ` ORDER BY created_date DESC`

	// Limit 0 means unlimited, so full backups see every row.
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, filter.Limit)
		argIdx++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list validations")
	}
	defer rows.Close()

	var recs []model.ParsedValidation
	for rows.Next() {
		rec, err := scanValidation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan validation")
		}
		recs = append(recs, *rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list validations iterate")
}

func (s *PostgresStore) Summary(ctx context.Context) (*AggregateSummary, error) {
	summary := &AggregateSummary{ByStatus: map[string]int{}}

	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE parse_error = ''),
			COUNT(*) FILTER (WHERE parse_error = '' AND COALESCE(api_quality_score, quality_score) >= $1),
			COUNT(*) FILTER (WHERE parse_error = '' AND COALESCE(api_quality_score, quality_score) < $1),
			COUNT(*) FILTER (WHERE parse_error <> '')
		FROM parsed_validations`,
		s.highQuality,
	).Scan(&summary.TotalValidations, &summary.HighQuality, &summary.LowQuality, &summary.ParseErrors)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: summary totals")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT
			CASE
				WHEN COALESCE(api_quality_score, quality_score) >= 9 THEN 'Excellent'
				WHEN COALESCE(api_quality_score, quality_score) >= 7 THEN 'Good'
				WHEN COALESCE(api_quality_score, quality_score) >= 5 THEN 'Fair'
				WHEN COALESCE(api_quality_score, quality_score) >= 3 THEN 'Poor'
				ELSE 'Invalid'
			END AS status,
			COUNT(*)
		FROM parsed_validations
		WHERE parse_error = '' AND COALESCE(api_quality_score, quality_score) IS NOT NULL
		GROUP BY status`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: summary statuses")
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status count")
		}
		summary.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: summary statuses iterate")
	}

	srcRows, err := s.pool.Query(ctx, `
		SELECT lead_source, COUNT(*)
		FROM parsed_validations
		WHERE parse_error = '' AND lead_source <> ''
		GROUP BY lead_source
		ORDER BY COUNT(*) DESC, lead_source
		LIMIT 10`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: summary sources")
	}
	defer srcRows.Close()

	for srcRows.Next() {
		var sc SourceCount
		if err := srcRows.Scan(&sc.LeadSource, &sc.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan source count")
		}
		summary.TopSources = append(summary.TopSources, sc)
	}
	return summary, eris.Wrap(srcRows.Err(), "postgres: summary sources iterate")
}

func (s *PostgresStore) StartRun(ctx context.Context) (*model.EtlRun, error) {
	run := &model.EtlRun{
		ID:        uuid.New().String(),
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO etl_runs (id, status, started_at) VALUES ($1, $2, $3)`,
		run.ID, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: start run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, stats model.RunStats) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE etl_runs SET status = $1, completed_at = $2, tasks_extracted = $3, validations_parsed = $4, high_quality_leads = $5, low_quality_leads = $6, parse_errors = $7 WHERE id = $8`,
		string(model.RunStatusComplete), time.Now().UTC(),
		stats.TasksExtracted, stats.ValidationsParsed,
		stats.HighQualityLeads, stats.LowQualityLeads, stats.ParseErrors,
		runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE etl_runs SET status = $1, completed_at = $2, error = $3 WHERE id = $4`,
		string(model.RunStatusFailed), time.Now().UTC(), msg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.EtlRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, status, started_at, completed_at, tasks_extracted, validations_parsed, high_quality_leads, low_quality_leads, parse_errors, error
		 FROM etl_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.EtlRun
	for rows.Next() {
		var r model.EtlRun
		if err := rows.Scan(&r.ID, &r.Status, &r.StartedAt, &r.CompletedAt,
			&r.Stats.TasksExtracted, &r.Stats.ValidationsParsed,
			&r.Stats.HighQualityLeads, &r.Stats.LowQualityLeads,
			&r.Stats.ParseErrors, &r.Error); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
