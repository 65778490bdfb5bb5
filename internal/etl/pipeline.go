// Package etl orchestrates the extract-parse-load run: pull validation
// tasks from Salesforce, parse the embedded report text, and persist the
// results with a run log entry.
package etl

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadval-cli/internal/model"
	"github.com/sells-group/leadval-cli/internal/parser"
	"github.com/sells-group/leadval-cli/internal/store"
	"github.com/sells-group/leadval-cli/pkg/salesforce"
)

// defaultHighQualityThreshold is the 0-10 score at or above which a lead
// counts as high quality when no threshold is configured.
const defaultHighQualityThreshold = 7

// Options control a single pipeline run.
type Options struct {
	// ForceRefresh ignores the incremental cutoff and re-extracts all tasks.
	ForceRefresh bool
	// ParseOnly skips extraction and re-parses tasks already stored.
	ParseOnly bool
	// DaysBack sets the incremental extraction window.
	DaysBack int
	// Limit caps the number of tasks processed; 0 means no cap.
	Limit int
}

// Pipeline wires the Salesforce client, parser, and store into one run loop.
type Pipeline struct {
	sf          salesforce.Client
	store       store.Store
	parser      *parser.Parser
	concurrency int
	highQuality int
}

// New builds a Pipeline. sf may be nil when every run uses ParseOnly.
// highQuality is the 0-10 score at or above which a lead counts as high
// quality; values below 1 fall back to the default.
func New(sf salesforce.Client, st store.Store, concurrency, highQuality int) *Pipeline {
	if highQuality < 1 {
		highQuality = defaultHighQualityThreshold
	}
	return &Pipeline{
		sf:          sf,
		store:       st,
		parser:      parser.New(),
		concurrency: concurrency,
		highQuality: highQuality,
	}
}

// Run executes one ETL cycle and returns the completed run record. The run
// is logged in the store; on failure the run row is marked failed before
// the error is returned.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*model.EtlRun, error) {
	run, err := p.store.StartRun(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "etl: start run")
	}
	log := zap.L().With(zap.String("run_id", run.ID))
	log.Info("etl run started",
		zap.Bool("force_refresh", opts.ForceRefresh),
		zap.Bool("parse_only", opts.ParseOnly),
		zap.Int("days_back", opts.DaysBack))

	stats, err := p.execute(ctx, log, opts)
	if err != nil {
		if failErr := p.store.FailRun(ctx, run.ID, err); failErr != nil {
			log.Error("failed to record run failure", zap.Error(failErr))
		}
		return nil, err
	}

	if err := p.store.CompleteRun(ctx, run.ID, *stats); err != nil {
		return nil, eris.Wrap(err, "etl: complete run")
	}

	run.Status = model.RunStatusComplete
	run.Stats = *stats
	log.Info("etl run complete",
		zap.Int("tasks_extracted", stats.TasksExtracted),
		zap.Int("validations_parsed", stats.ValidationsParsed),
		zap.Int("high_quality", stats.HighQualityLeads),
		zap.Int("low_quality", stats.LowQualityLeads),
		zap.Int("parse_errors", stats.ParseErrors))

	if summary, err := p.store.Summary(ctx); err == nil {
		for _, src := range summary.TopSources {
			log.Info("lead source",
				zap.String("source", src.LeadSource),
				zap.Int("count", src.Count))
		}
	}
	return run, nil
}

func (p *Pipeline) execute(ctx context.Context, log *zap.Logger, opts Options) (*model.RunStats, error) {
	stats := &model.RunStats{}

	var tasks []model.Task
	var err error
	if opts.ParseOnly {
		tasks, err = p.store.LoadTasks(ctx, opts.Limit)
		if err != nil {
			return nil, eris.Wrap(err, "etl: load stored tasks")
		}
	} else {
		tasks, err = p.extract(ctx, opts)
		if err != nil {
			return nil, err
		}
		if _, err := p.store.UpsertTasks(ctx, tasks); err != nil {
			return nil, eris.Wrap(err, "etl: upsert tasks")
		}
	}
	stats.TasksExtracted = len(tasks)
	log.Info("tasks ready", zap.Int("count", len(tasks)))

	records, err := ParseBatch(ctx, tasks, p.parser.ParseTask, p.concurrency)
	if err != nil {
		return nil, eris.Wrap(err, "etl: parse batch")
	}

	countRecords(records, stats, p.highQuality)

	if _, err := p.store.UpsertValidations(ctx, records); err != nil {
		return nil, eris.Wrap(err, "etl: upsert validations")
	}
	return stats, nil
}

// extract pulls validation tasks from Salesforce and converts them to the
// storage model. Records without an Id are dropped.
func (p *Pipeline) extract(ctx context.Context, opts Options) ([]model.Task, error) {
	if p.sf == nil {
		return nil, eris.New("etl: no salesforce client configured")
	}

	var since *time.Time
	if !opts.ForceRefresh && opts.DaysBack > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -opts.DaysBack)
		since = &cutoff
	}

	raw, err := salesforce.QueryValidationTasks(ctx, p.sf, since)
	if err != nil {
		return nil, eris.Wrap(err, "etl: extract tasks")
	}
	if opts.Limit > 0 && len(raw) > opts.Limit {
		raw = raw[:opts.Limit]
	}

	now := time.Now().UTC()
	tasks := make([]model.Task, 0, len(raw))
	for _, r := range raw {
		if r.ID == "" {
			continue
		}
		created, err := salesforce.ParseTime(r.CreatedDate)
		if err != nil {
			zap.L().Warn("bad created date", zap.String("task_id", r.ID), zap.Error(err))
		}
		modified, err := salesforce.ParseTime(r.LastModifiedDate)
		if err != nil {
			zap.L().Warn("bad modified date", zap.String("task_id", r.ID), zap.Error(err))
		}
		task := model.Task{
			ID:               r.ID,
			WhoID:            r.WhoID,
			WhatID:           r.WhatID,
			Subject:          r.Subject,
			Description:      r.Description,
			CreatedDate:      created,
			LastModifiedDate: modified,
			ExtractedAt:      now,
		}
		if r.Who != nil {
			task.LeadSource = r.Who.LeadSource
			task.LeadCompany = r.Who.Company
			task.LeadEmail = r.Who.Email
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// countRecords fills the parse and quality counters. The API-reported
// quality score wins over the locally parsed one; records with neither are
// counted as parsed but not bucketed.
func countRecords(records []model.ParsedValidation, stats *model.RunStats, highQuality int) {
	for i := range records {
		rec := &records[i]
		if rec.ParseError != "" {
			stats.ParseErrors++
			continue
		}
		stats.ValidationsParsed++

		score := CoalesceInt(rec.APIQualityScore, rec.QualityScore)
		if score == nil {
			continue
		}
		if *score >= highQuality {
			stats.HighQualityLeads++
		} else {
			stats.LowQualityLeads++
		}
	}
}
