package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/pkg/db"
)

// RunSummary pairs a stored solve run with its best schedule
type RunSummary struct {
	Run  db.SolveRun
	Best *db.RunSchedule // nil when the run found nothing
	Kept int             // schedules stored for the run
}

// ViewRunHistoryStore defines the database operations needed
type ViewRunHistoryStore interface {
	GetRuns(ctx context.Context) ([]db.SolveRun, error)
	GetRun(ctx context.Context, id string) (*db.SolveRun, []db.RunSchedule, error)
}

const maxConcurrentRunFetches = 10

// ViewRunHistory summarises the most recent solve runs, newest first
func ViewRunHistory(ctx context.Context, store ViewRunHistoryStore, logger *zap.Logger, count int) ([]RunSummary, error) {
	logger.Debug("Starting viewRunHistory", zap.Int("count", count))

	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch solve runs: %w", err)
	}
	if count > 0 && count < len(runs) {
		runs = runs[:count]
	}

	type runFetchResult struct {
		index     int
		schedules []db.RunSchedule
		err       error
	}

	resultChan := make(chan runFetchResult, len(runs))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrentRunFetches)

	for i, run := range runs {
		wg.Add(1)
		go func(index int, id string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			_, schedules, err := store.GetRun(ctx, id)
			resultChan <- runFetchResult{index: index, schedules: schedules, err: err}
		}(i, run.ID)
	}

	wg.Wait()
	close(resultChan)

	summaries := make([]RunSummary, len(runs))
	for i, run := range runs {
		summaries[i].Run = run
	}

	for result := range resultChan {
		if result.err != nil {
			return nil, fmt.Errorf("failed to fetch solve run %s: %w", runs[result.index].ID, result.err)
		}
		summary := &summaries[result.index]
		summary.Kept = len(result.schedules)
		if len(result.schedules) > 0 {
			best := result.schedules[0]
			summary.Best = &best
		}
	}

	logger.Debug("ViewRunHistory completed", zap.Int("runs", len(summaries)))

	return summaries, nil
}
