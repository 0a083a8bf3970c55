package solver

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// enumerateParallel runs one independent search per candidate of the first bucket.
// Each goroutine owns its own state; emit calls are serialised.
func enumerateParallel(ctx context.Context, graph *conflictGraph, workers int, budget *nodeBudget, emit EmitFunc, stats Stats) (Stats, error) {
	root := graph.newState(ctx, budget, nil)
	if err := root.visit(); err != nil {
		return stats.add(root.stats), err
	}
	top := root.nextBucket()

	var emitMu sync.Mutex
	serialised := func(schedule []*model.Section) error {
		emitMu.Lock()
		defer emitMu.Unlock()
		return emit(schedule)
	}

	var statsMu sync.Mutex
	total := stats.add(root.stats)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for candidate := graph.offsets[top]; candidate < graph.offsets[top+1]; candidate++ {
		group.Go(func() error {
			state := graph.newState(groupCtx, budget, serialised)
			err := state.branch(candidate, 0)

			statsMu.Lock()
			total = total.add(state.stats)
			statsMu.Unlock()

			return err
		})
	}

	err := group.Wait()
	return total, err
}
