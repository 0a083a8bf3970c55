package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/pkg/core/constraints"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/scoring"
)

// Problem is everything a solve depends on. It is read-only to the solver.
type Problem struct {
	Catalog     model.Catalog
	Includes    []Include
	Constraints []constraints.Constraint

	// Filters supplies optional per-subject predicates applied while binding includes
	Filters SectionFilterProvider

	Priorities scoring.Priorities

	// Tuning holds the free-day constants; the zero value selects scoring.DefaultTuning
	Tuning scoring.Tuning
}

// Options controls how a solve runs
type Options struct {
	Workers    int
	NodeBudget uint64

	// Limit keeps only the best Limit schedules (0 keeps all)
	Limit int

	// Logger defaults to a no-op logger
	Logger *zap.Logger
}

// Result is the outcome of a solve
type Result struct {
	// Schedules are ranked best first
	Schedules []RankedSchedule

	// Buckets are the validated requirement groups, kept for alternates lookups
	Buckets []*Bucket

	// EmptyBuckets names the requirement groups left without candidates before the search
	EmptyBuckets []string

	// Found counts every valid schedule, including those dropped by Limit
	Found uint64

	Stats Stats
}

// Alternates returns interchangeable sections for each section of a ranked schedule
func (r *Result) Alternates(schedule RankedSchedule) [][]*model.Section {
	return FindAlternates(r.Buckets, schedule.Sections)
}

// Solve runs include, filter, validate, enumerate, score and rank.
//
// An empty result is not an error. If the node budget runs out, the schedules found so far are
// returned together with ErrBudgetExhausted.
func Solve(ctx context.Context, problem Problem, options Options) (*Result, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tuning := problem.Tuning
	if tuning == (scoring.Tuning{}) {
		tuning = scoring.DefaultTuning()
	}

	buckets := IncludeSections(problem.Catalog, problem.Includes, problem.Filters)
	logger.Debug("Bound sections to includes",
		zap.Int("includes", len(problem.Includes)),
		zap.Int("candidates", countCandidates(buckets)))

	buckets = FilterBuckets(buckets, problem.Constraints)
	logger.Debug("Applied constraints",
		zap.Int("constraints", len(problem.Constraints)),
		zap.Int("candidates", countCandidates(buckets)))

	buckets = ValidateBuckets(buckets)
	logger.Debug("Validated candidates", zap.Int("candidates", countCandidates(buckets)))

	result := &Result{
		Buckets:      buckets,
		EmptyBuckets: EmptyBuckets(buckets),
	}
	if len(result.EmptyBuckets) > 0 {
		logger.Info("Requirement groups without candidates", zap.Strings("includes", result.EmptyBuckets))
	}

	scorer := scoring.NewScorer(problem.Priorities, tuning)
	ranker := NewRanker(options.Limit)

	stats, err := Enumerate(ctx, buckets, SearchOptions{
		Workers:    options.Workers,
		NodeBudget: options.NodeBudget,
	}, func(schedule []*model.Section) error {
		score, breakdown := scorer.ScoreSections(schedule)
		ranker.Add(RankedSchedule{
			Sections:  schedule,
			Score:     score,
			Breakdown: breakdown,
			Credits:   TotalCredits(schedule),
		})
		result.Found++
		return nil
	})

	result.Stats = stats
	result.Schedules = ranker.Results()

	if err != nil {
		if errors.Is(err, ErrBudgetExhausted) {
			logger.Warn("Search stopped early",
				zap.Uint64("node_budget", options.NodeBudget),
				zap.Uint64("found", result.Found))
			return result, err
		}
		return nil, fmt.Errorf("failed to enumerate schedules: %w", err)
	}

	logger.Info("Solved",
		zap.Uint64("found", result.Found),
		zap.Int("kept", len(result.Schedules)),
		zap.Uint64("nodes", stats.Nodes),
		zap.Uint64("pruned", stats.Pruned))

	return result, nil
}

// TotalCredits sums the credit hours of the sections
func TotalCredits(sections []*model.Section) uint64 {
	return lo.SumBy(sections, func(section *model.Section) uint64 {
		return section.Credits()
	})
}

func countCandidates(buckets []*Bucket) int {
	return lo.SumBy(buckets, func(bucket *Bucket) int {
		return len(bucket.Candidates)
	})
}
