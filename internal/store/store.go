package store

import (
	"context"

	"github.com/sells-group/leadval-cli/internal/model"
)

// defaultHighQuality is the 0-10 score at or above which summary counts
// treat a lead as high quality when no threshold is configured.
const defaultHighQuality = 7

// ErrorFilter selects parsed validations by parse-error presence. The zero
// value includes every record, so backups keep the error rows.
type ErrorFilter string

const (
	ErrorsAll  ErrorFilter = ""
	ErrorsOnly ErrorFilter = "only"
	ErrorsNone ErrorFilter = "none"
)

// ValidationFilter specifies criteria for listing parsed validations.
type ValidationFilter struct {
	LeadSource string      `json:"lead_source,omitempty"`
	Errors     ErrorFilter `json:"errors,omitempty"`
	Limit      int         `json:"limit,omitempty"`
	Offset     int         `json:"offset,omitempty"`
}

// SourceCount is one lead source's record count in the summary.
type SourceCount struct {
	LeadSource string `json:"lead_source"`
	Count      int    `json:"count"`
}

// AggregateSummary rolls up the parsed validation table. Records carrying a
// parse error are excluded from every figure except ParseErrors itself.
type AggregateSummary struct {
	TotalValidations int            `json:"total_validations"`
	HighQuality      int            `json:"high_quality"`
	LowQuality       int            `json:"low_quality"`
	ParseErrors      int            `json:"parse_errors"`
	ByStatus         map[string]int `json:"by_status"`
	TopSources       []SourceCount  `json:"top_sources"`
}

// Store defines the persistence interface for the validation ETL.
type Store interface {
	// Tasks
	UpsertTasks(ctx context.Context, tasks []model.Task) (int64, error)
	LoadTasks(ctx context.Context, limit int) ([]model.Task, error)

	// Parsed validations
	UpsertValidations(ctx context.Context, recs []model.ParsedValidation) (int64, error)
	ListValidations(ctx context.Context, filter ValidationFilter) ([]model.ParsedValidation, error)
	Summary(ctx context.Context) (*AggregateSummary, error)

	// Run log
	StartRun(ctx context.Context) (*model.EtlRun, error)
	CompleteRun(ctx context.Context, runID string, stats model.RunStats) error
	FailRun(ctx context.Context, runID string, cause error) error
	ListRuns(ctx context.Context, limit int) ([]model.EtlRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
