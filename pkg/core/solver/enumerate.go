package solver

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync/atomic"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// ErrBudgetExhausted is returned when the search visits more nodes than allowed
var ErrBudgetExhausted = errors.New("search node budget exhausted")

// cancelCheckInterval is how many nodes are visited between context checks
const cancelCheckInterval = 1024

// SearchOptions tunes the enumerator
type SearchOptions struct {
	// Workers above 1 splits the first chosen requirement group across goroutines
	Workers int

	// NodeBudget caps the number of visited nodes across all workers (0 = unlimited)
	NodeBudget uint64
}

// Stats describes the work done by one enumeration
type Stats struct {
	Nodes  uint64 `json:"nodes"`
	Leaves uint64 `json:"leaves"`
	Pruned uint64 `json:"pruned"`

	// SearchSpace is the product of the bucket sizes, saturating at MaxUint64
	SearchSpace uint64 `json:"searchSpace"`
}

func (s Stats) add(other Stats) Stats {
	s.Nodes += other.Nodes
	s.Leaves += other.Leaves
	s.Pruned += other.Pruned
	return s
}

// EmitFunc receives each complete schedule, one section per bucket in bucket order.
// The slice belongs to the callee. Returning an error stops the enumeration.
type EmitFunc func(schedule []*model.Section) error

// Enumerate finds every combination of one candidate per bucket with no overlapping meetings.
//
// The search is depth-first with forward checking: choosing a candidate removes every
// conflicting candidate from the unfilled buckets, and a branch is abandoned as soon as any
// unfilled bucket is left empty. Removals are recorded on an undo log and restored on backtrack.
// The next bucket is always the unfilled one with the fewest remaining candidates.
//
// If any bucket is empty, or there are no buckets, nothing is emitted and no error is returned.
func Enumerate(ctx context.Context, buckets []*Bucket, options SearchOptions, emit EmitFunc) (Stats, error) {
	stats := Stats{SearchSpace: searchSpace(buckets)}
	if len(buckets) == 0 || len(EmptyBuckets(buckets)) > 0 {
		return stats, nil
	}

	graph := newConflictGraph(buckets)
	budget := &nodeBudget{limit: options.NodeBudget}

	if options.Workers > 1 {
		return enumerateParallel(ctx, graph, options.Workers, budget, emit, stats)
	}

	state := graph.newState(ctx, budget, emit)
	err := state.search(0)
	return stats.add(state.stats), err
}

// searchSpace multiplies the bucket sizes, saturating on overflow
func searchSpace(buckets []*Bucket) uint64 {
	if len(buckets) == 0 {
		return 0
	}
	space := uint64(1)
	for _, bucket := range buckets {
		size := uint64(len(bucket.Candidates))
		if size == 0 {
			return 0
		}
		if space > math.MaxUint64/size {
			space = math.MaxUint64
			continue
		}
		space *= size
	}
	return space
}

// conflictGraph indexes every candidate globally and records which candidates of other
// buckets each one overlaps. It is read-only once built and shared between workers.
type conflictGraph struct {
	sections []*model.Section
	owner    []int
	// offsets[b] is the first global index of bucket b; offsets[len(buckets)] is the total
	offsets   []int
	conflicts [][]int
}

func newConflictGraph(buckets []*Bucket) *conflictGraph {
	graph := &conflictGraph{offsets: make([]int, 0, len(buckets)+1)}
	for b, bucket := range buckets {
		graph.offsets = append(graph.offsets, len(graph.sections))
		for _, section := range bucket.Candidates {
			graph.sections = append(graph.sections, section)
			graph.owner = append(graph.owner, b)
		}
	}
	graph.offsets = append(graph.offsets, len(graph.sections))

	graph.conflicts = make([][]int, len(graph.sections))
	for i := range graph.sections {
		mine := &graph.sections[i].Schedule
		if mine.IsEmpty() {
			continue
		}
		for j := i + 1; j < len(graph.sections); j++ {
			if graph.owner[i] == graph.owner[j] {
				continue
			}
			if mine.Overlaps([]*model.WeeklySchedule{&graph.sections[j].Schedule}) {
				graph.conflicts[i] = append(graph.conflicts[i], j)
				graph.conflicts[j] = append(graph.conflicts[j], i)
			}
		}
	}

	return graph
}

func (g *conflictGraph) bucketCount() int {
	return len(g.offsets) - 1
}

// nodeBudget is shared by all workers of one enumeration
type nodeBudget struct {
	limit uint64
	used  atomic.Uint64
}

func (b *nodeBudget) spend() error {
	if b.limit == 0 {
		return nil
	}
	if b.used.Add(1) > b.limit {
		return ErrBudgetExhausted
	}
	return nil
}

// searchState is the mutable state of one depth-first search. It is owned by a single goroutine.
type searchState struct {
	graph  *conflictGraph
	ctx    context.Context
	budget *nodeBudget
	emit   EmitFunc

	// alive counts the remaining candidates per bucket
	alive []int
	// removedAt is the depth at which a candidate was removed, 0 while it is still available
	removedAt []int
	filled    []bool
	chosen    []*model.Section
	undo      []int

	stats Stats
}

func (g *conflictGraph) newState(ctx context.Context, budget *nodeBudget, emit EmitFunc) *searchState {
	state := &searchState{
		graph:     g,
		ctx:       ctx,
		budget:    budget,
		emit:      emit,
		alive:     make([]int, g.bucketCount()),
		removedAt: make([]int, len(g.sections)),
		filled:    make([]bool, g.bucketCount()),
		chosen:    make([]*model.Section, g.bucketCount()),
	}
	for b := range state.alive {
		state.alive[b] = g.offsets[b+1] - g.offsets[b]
	}
	return state
}

// visit accounts for one search node
func (s *searchState) visit() error {
	s.stats.Nodes++
	if (s.stats.Nodes-1)%cancelCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			return err
		}
	}
	return s.budget.spend()
}

// nextBucket returns the unfilled bucket with the fewest remaining candidates, or -1 when all are filled.
// Ties go to the lowest bucket index.
func (s *searchState) nextBucket() int {
	best := -1
	for b, count := range s.alive {
		if s.filled[b] {
			continue
		}
		if best < 0 || count < s.alive[best] {
			best = b
		}
	}
	return best
}

func (s *searchState) search(depth int) error {
	if err := s.visit(); err != nil {
		return err
	}

	bucket := s.nextBucket()
	if bucket < 0 {
		s.stats.Leaves++
		return s.emit(slices.Clone(s.chosen))
	}

	for candidate := s.graph.offsets[bucket]; candidate < s.graph.offsets[bucket+1]; candidate++ {
		if s.removedAt[candidate] != 0 {
			continue
		}
		if err := s.branch(candidate, depth); err != nil {
			return err
		}
	}
	return nil
}

// branch chooses the candidate, searches below it and restores the state
func (s *searchState) branch(candidate, depth int) error {
	mark := len(s.undo)
	var err error
	if s.choose(candidate, depth+1) {
		err = s.search(depth + 1)
	} else {
		s.stats.Pruned++
	}
	s.release(candidate, mark)
	return err
}

// choose fills the candidate's bucket and removes its conflicts from unfilled buckets.
// Returns false if an unfilled bucket has no candidates left.
func (s *searchState) choose(candidate, depth int) bool {
	bucket := s.graph.owner[candidate]
	s.filled[bucket] = true
	s.chosen[bucket] = s.graph.sections[candidate]

	for _, other := range s.graph.conflicts[candidate] {
		otherBucket := s.graph.owner[other]
		if s.filled[otherBucket] || s.removedAt[other] != 0 {
			continue
		}
		s.removedAt[other] = depth
		s.alive[otherBucket]--
		s.undo = append(s.undo, other)
		if s.alive[otherBucket] == 0 {
			return false
		}
	}
	return true
}

// release undoes every removal recorded after mark and empties the candidate's bucket
func (s *searchState) release(candidate, mark int) {
	for len(s.undo) > mark {
		last := len(s.undo) - 1
		restored := s.undo[last]
		s.undo = s.undo[:last]
		s.removedAt[restored] = 0
		s.alive[s.graph.owner[restored]]++
	}

	bucket := s.graph.owner[candidate]
	s.filled[bucket] = false
	s.chosen[bucket] = nil
}
