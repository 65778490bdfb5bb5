package etl

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadval-cli/internal/model"
)

// defaultConcurrency limits parallel task parsing.
const defaultConcurrency = 8

// ParseFunc converts one raw task into a parsed validation record.
type ParseFunc func(task model.Task) model.ParsedValidation

// ParseBatch parses tasks concurrently, preserving input order. A panic in
// one task's parse is recovered and recorded on that record's ParseError so
// a single malformed description cannot take down the run.
func ParseBatch(ctx context.Context, tasks []model.Task, parse ParseFunc, concurrency int) ([]model.ParsedValidation, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	records := make([]model.ParsedValidation, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = parseOne(task, parse)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseOne(task model.Task, parse ParseFunc) (rec model.ParsedValidation) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("task parse panicked",
				zap.String("task_id", task.ID),
				zap.Any("panic", r))
			rec = model.ParsedValidation{
				TaskID:     task.ID,
				WhoID:      task.WhoID,
				Subject:    task.Subject,
				ParseError: fmt.Sprintf("panic: %v", r),
			}
		}
	}()
	return parse(task)
}
