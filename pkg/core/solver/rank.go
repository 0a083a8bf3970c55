package solver

import (
	"cmp"
	"container/heap"
	"slices"

	"github.com/samber/lo"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/scoring"
)

// RankedSchedule is a complete schedule with its score
type RankedSchedule struct {
	// Sections holds one section per include, in include order
	Sections  []*model.Section
	Score     float64
	Breakdown scoring.Breakdown
	Credits   uint64
}

// Keys returns the section keys in include order
func (r RankedSchedule) Keys() []model.SectionKey {
	return lo.Map(r.Sections, func(section *model.Section, _ int) model.SectionKey {
		return section.Key
	})
}

// compareRanked orders by descending score, then by the chosen keys in include order
func compareRanked(a, b RankedSchedule) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return slices.CompareFunc(a.Sections, b.Sections, func(x, y *model.Section) int {
		return cmp.Compare(x.Key, y.Key)
	})
}

// Ranker collects scored schedules and returns them best first.
// With a positive limit only the best limit schedules are kept. Not safe for concurrent use.
type Ranker struct {
	limit int
	items rankHeap
}

// NewRanker creates a Ranker keeping at most limit schedules (0 keeps all)
func NewRanker(limit int) *Ranker {
	return &Ranker{limit: max(limit, 0)}
}

// Add offers a schedule to the ranker
func (r *Ranker) Add(schedule RankedSchedule) {
	if r.limit == 0 {
		r.items = append(r.items, schedule)
		return
	}
	if len(r.items) < r.limit {
		heap.Push(&r.items, schedule)
		return
	}
	// items[0] is the worst kept schedule
	if compareRanked(schedule, r.items[0]) < 0 {
		r.items[0] = schedule
		heap.Fix(&r.items, 0)
	}
}

// Len returns the number of schedules held
func (r *Ranker) Len() int {
	return len(r.items)
}

// Results returns the kept schedules, best first
func (r *Ranker) Results() []RankedSchedule {
	results := slices.Clone([]RankedSchedule(r.items))
	slices.SortFunc(results, compareRanked)
	return results
}

// rankHeap keeps the worst schedule at the root
type rankHeap []RankedSchedule

func (h rankHeap) Len() int           { return len(h) }
func (h rankHeap) Less(i, j int) bool { return compareRanked(h[i], h[j]) > 0 }
func (h rankHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *rankHeap) Push(x any) {
	*h = append(*h, x.(RankedSchedule))
}

func (h *rankHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
