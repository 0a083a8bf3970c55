package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/internal/config"
	"github.com/jakechorley/class-scheduler/pkg/core/constraints"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/scoring"
	"github.com/jakechorley/class-scheduler/pkg/core/solver"
	"github.com/jakechorley/class-scheduler/pkg/db"
)

// ErrInvalidRequest marks solve requests rejected before the search starts
var ErrInvalidRequest = errors.New("invalid solve request")

// SolveRequest describes one solve, whether it comes from a profile or an API call
type SolveRequest struct {
	Term        string
	Includes    []string
	Constraints []constraints.Spec
	Priorities  scoring.Priorities
	Tuning      scoring.Tuning
	Filters     solver.SubjectFilters
	Search      config.SearchConfig

	// DryRun skips storing the run
	DryRun bool
}

// GenerateResult is a solve and the run stored for it
type GenerateResult struct {
	Run    *db.SolveRun
	Result *solver.Result

	// Truncated is set when the node budget ran out before the search finished
	Truncated bool
}

// GenerateSchedulesStore defines the database operations needed to record a solve
type GenerateSchedulesStore interface {
	GetTerms(ctx context.Context) ([]db.Term, error)
	InsertRun(ctx context.Context, run *db.SolveRun, schedules []db.RunSchedule) error
}

// SolveObserver receives the outcome of every solve
type SolveObserver interface {
	ObserveSolve(result *solver.Result, err error, duration time.Duration)
}

// RequestFromConfig builds a solve request from a saved profile
func RequestFromConfig(cfg *config.Config) (SolveRequest, error) {
	specs, err := cfg.ConstraintSpecs()
	if err != nil {
		return SolveRequest{}, fmt.Errorf("invalid constraints: %w", err)
	}

	return SolveRequest{
		Term:        cfg.Term,
		Includes:    cfg.Includes,
		Constraints: specs,
		Priorities:  cfg.Priorities,
		Tuning:      cfg.Tuning,
		Filters:     cfg.SubjectFilters,
		Search:      cfg.Search,
	}, nil
}

// Problem parses the request against the catalog
func (r SolveRequest) Problem(sections model.Catalog) (solver.Problem, error) {
	includes, err := solver.ParseIncludes(r.Includes)
	if err != nil {
		return solver.Problem{}, fmt.Errorf("%w: invalid includes: %w", ErrInvalidRequest, err)
	}

	active, err := constraints.FromSpecs(r.Constraints)
	if err != nil {
		return solver.Problem{}, fmt.Errorf("%w: invalid constraints: %w", ErrInvalidRequest, err)
	}

	return solver.Problem{
		Catalog:     sections,
		Includes:    includes,
		Constraints: active,
		Filters:     r.Filters,
		Priorities:  r.Priorities,
		Tuning:      r.Tuning,
	}, nil
}

// GenerateSchedules solves the request against the catalog, ranks the schedules and
// stores the run with its kept schedules. Running out of node budget is not an error:
// the schedules found so far are kept and the result is marked truncated.
func GenerateSchedules(
	ctx context.Context,
	store GenerateSchedulesStore,
	sections model.Catalog,
	request SolveRequest,
	logger *zap.Logger,
	observer SolveObserver,
) (*GenerateResult, error) {
	logger.Info("Generating schedules",
		zap.String("term", request.Term),
		zap.Strings("includes", request.Includes),
		zap.Int("constraints", len(request.Constraints)))

	problem, err := request.Problem(sections)
	if err != nil {
		return nil, err
	}
	if request.Priorities.IsZero() {
		logger.Debug("All priorities are zero, every schedule scores 0")
	}

	start := time.Now()
	result, err := solver.Solve(ctx, problem, solver.Options{
		Workers:    request.Search.Workers,
		NodeBudget: request.Search.NodeBudget,
		Limit:      request.Search.ScheduleLimit(),
		Logger:     logger,
	})
	if observer != nil {
		observer.ObserveSolve(result, err, time.Since(start))
	}

	truncated := errors.Is(err, solver.ErrBudgetExhausted)
	if err != nil && !truncated {
		return nil, err
	}
	if truncated {
		logger.Warn("Node budget exhausted, keeping partial results",
			zap.Uint64("node_budget", request.Search.NodeBudget),
			zap.Uint64("found", result.Found))
	}

	generated := &GenerateResult{Result: result, Truncated: truncated}
	if request.DryRun {
		logger.Info("Dry run, not storing solve run", zap.Uint64("found", result.Found))
		return generated, nil
	}

	run, err := recordRun(ctx, store, request, result)
	if err != nil {
		return nil, err
	}
	generated.Run = run

	logger.Info("Solve run stored",
		zap.String("run_id", run.ID),
		zap.Uint64("found", result.Found),
		zap.Int("stored", len(result.Schedules)))

	return generated, nil
}

func recordRun(ctx context.Context, store GenerateSchedulesStore, request SolveRequest, result *solver.Result) (*db.SolveRun, error) {
	terms, err := store.GetTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch terms: %w", err)
	}

	run := &db.SolveRun{
		Includes:    request.Includes,
		Constraints: request.Constraints,
		Priorities:  request.Priorities,
		Found:       result.Found,
	}
	if term, ok := lo.Find(terms, func(t db.Term) bool { return t.Name == request.Term }); ok {
		run.TermID = term.ID
	}

	schedules := lo.Map(result.Schedules, func(schedule solver.RankedSchedule, i int) db.RunSchedule {
		return db.RunSchedule{
			Rank:        i + 1,
			SectionKeys: schedule.Keys(),
			Score:       schedule.Score,
			Breakdown:   schedule.Breakdown,
			Credits:     schedule.Credits,
		}
	})

	if err := store.InsertRun(ctx, run, schedules); err != nil {
		return nil, fmt.Errorf("failed to insert solve run: %w", err)
	}
	return run, nil
}
