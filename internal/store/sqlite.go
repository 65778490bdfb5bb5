package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadval-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db          *sql.DB
	highQuality int
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. highQuality is the 0-10 score at or above which summary counts treat
// a lead as high quality; values below 1 fall back to 7.
func NewSQLite(dsn string, highQuality int) (*SQLiteStore, error) {
	if highQuality < 1 {
		highQuality = defaultHighQuality
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, highQuality: highQuality}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS validation_tasks (
	id                 TEXT PRIMARY KEY,
	who_id             TEXT NOT NULL DEFAULT '',
	what_id            TEXT NOT NULL DEFAULT '',
	subject            TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	lead_source        TEXT NOT NULL DEFAULT '',
	lead_company       TEXT NOT NULL DEFAULT '',
	lead_email         TEXT NOT NULL DEFAULT '',
	created_date       DATETIME,
	last_modified_date DATETIME,
	extracted_at       DATETIME NOT NULL DEFAULT (datetime('now'))
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
	raw_api_response                TEXT NOT NULL DEFAULT '{}',
	parse_error                     TEXT NOT NULL DEFAULT '',
	created_date                    DATETIME,
	last_modified_date              DATETIME,
	parsed_at                       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS etl_runs (
	id                 TEXT PRIMARY KEY,
	status             TEXT NOT NULL DEFAULT 'running',
	started_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at       DATETIME,
	tasks_extracted    INTEGER NOT NULL DEFAULT 0,
	validations_parsed INTEGER NOT NULL DEFAULT 0,
	high_quality_leads INTEGER NOT NULL DEFAULT 0,
	low_quality_leads  INTEGER NOT NULL DEFAULT 0,
	parse_errors       INTEGER NOT NULL DEFAULT 0,
	error              TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_tasks_last_modified ON validation_tasks(last_modified_date);
CREATE INDEX IF NOT EXISTS idx_validations_lead_source ON parsed_validations(lead_source);
CREATE INDEX IF NOT EXISTS idx_validations_created ON parsed_validations(created_date);
CREATE INDEX IF NOT EXISTS idx_etl_runs_started ON etl_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertTasks(ctx context.Context, tasks []model.Task) (int64, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(
		`INSERT OR REPLACE INTO validation_tasks (%s) VALUES (%s)`,
		strings.Join(taskColumns, ", "),
		placeholders(len(taskColumns)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert tasks")
	}
	defer tx.Rollback()

	var n int64
	for _, t := range tasks {
		if _, err := tx.ExecContext(ctx, query, taskRow(t)...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert task %s", t.ID)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert tasks")
	}
	return n, nil
}

func (s *SQLiteStore) LoadTasks(ctx context.Context, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = 10000
	}

	query := fmt.Sprintf(
		`SELECT %s FROM validation_tasks ORDER BY last_modified_date DESC LIMIT ?`,
		strings.Join(taskColumns, ", "),
	)
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load tasks")
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan task")
		}
		tasks = append(tasks, *t)
	}
	return tasks, eris.Wrap(rows.Err(), "sqlite: load tasks iterate")
}

func (s *SQLiteStore) UpsertValidations(ctx context.Context, recs []model.ParsedValidation) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(
		`INSERT OR REPLACE INTO parsed_validations (%s) VALUES (%s)`,
		strings.Join(validationColumns, ", "),
		placeholders(len(validationColumns)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert validations")
	}
	defer tx.Rollback()

	var n int64
	for _, rec := range recs {
		row, err := validationRow(rec)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, query, row...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert validation %s", rec.TaskID)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert validations")
	}
	return n, nil
}

func (s *SQLiteStore) ListValidations(ctx context.Context, filter ValidationFilter) ([]model.ParsedValidation, error) {
	query := fmt.Sprintf(`SELECT %s FROM parsed_validations WHERE 1=1`, strings.Join(validationColumns, ", "))
	var args []any

	if filter.LeadSource != "" {
		query += ` AND lead_source = ?`
		args = append(args, filter.LeadSource)
	}
	switch filter.Errors {
	case ErrorsOnly:
		query += ` AND parse_error <> ''`
	case ErrorsNone:
		query += ` AND parse_error = ''`
	}
	query += ` ORDER BY created_date DESC`

	// Limit 0 means unlimited, so full backups see every row. SQLite needs
	// a LIMIT clause before OFFSET; -1 disables it.
	switch {
	case filter.Limit > 0:
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	case filter.Offset > 0:
		query += ` LIMIT -1`
	}

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list validations")
	}
	defer rows.Close()

	var recs []model.ParsedValidation
	for rows.Next() {
		rec, err := scanValidation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan validation")
		}
		recs = append(recs, *rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list validations iterate")
}

func (s *SQLiteStore) Summary(ctx context.Context) (*AggregateSummary, error) {
	summary := &AggregateSummary{ByStatus: map[string]int{}}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE parse_error = ''),
			COUNT(*) FILTER (WHERE parse_error = '' AND COALESCE(api_quality_score, quality_score) >= ?),
			COUNT(*) FILTER (WHERE parse_error = '' AND COALESCE(api_quality_score, quality_score) < ?),
			COUNT(*) FILTER (WHERE parse_error <> '')
		FROM parsed_validations`,
		s.highQuality, s.highQuality,
	).Scan(&summary.TotalValidations, &summary.HighQuality, &summary.LowQuality, &summary.ParseErrors)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: summary totals")
	}

	rows, err := s.db.QueryContext(ctx, `
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
		return nil, eris.Wrap(err, "sqlite: summary statuses")
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status count")
		}
		summary.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: summary statuses iterate")
	}

	srcRows, err := s.db.QueryContext(ctx, `
		SELECT lead_source, COUNT(*)
		FROM parsed_validations
		WHERE parse_error = '' AND lead_source <> ''
		GROUP BY lead_source
		ORDER BY COUNT(*) DESC, lead_source
		LIMIT 10`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: summary sources")
	}
	defer srcRows.Close()

	for srcRows.Next() {
		var sc SourceCount
		if err := srcRows.Scan(&sc.LeadSource, &sc.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan source count")
		}
		summary.TopSources = append(summary.TopSources, sc)
	}
	return summary, eris.Wrap(srcRows.Err(), "sqlite: summary sources iterate")
}

func (s *SQLiteStore) StartRun(ctx context.Context) (*model.EtlRun, error) {
	run := &model.EtlRun{
		ID:        uuid.New().String(),
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO etl_runs (id, status, started_at) VALUES (?, ?, ?)`,
		run.ID, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: start run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, stats model.RunStats) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE etl_runs SET status = ?, completed_at = ?, tasks_extracted = ?, validations_parsed = ?, high_quality_leads = ?, low_quality_leads = ?, parse_errors = ? WHERE id = ?`,
		string(model.RunStatusComplete), time.Now().UTC(),
		stats.TasksExtracted, stats.ValidationsParsed,
		stats.HighQualityLeads, stats.LowQualityLeads, stats.ParseErrors,
		runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE etl_runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(model.RunStatusFailed), time.Now().UTC(), msg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.EtlRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, started_at, completed_at, tasks_extracted, validations_parsed, high_quality_leads, low_quality_leads, parse_errors, error
		 FROM etl_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.EtlRun
	for rows.Next() {
		var r model.EtlRun
		if err := rows.Scan(&r.ID, &r.Status, &r.StartedAt, &r.CompletedAt,
			&r.Stats.TasksExtracted, &r.Stats.ValidationsParsed,
			&r.Stats.HighQualityLeads, &r.Stats.LowQualityLeads,
			&r.Stats.ParseErrors, &r.Error); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func placeholders(n int) string {
	return strings.Repeat("?, ", n-1) + "?"
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
