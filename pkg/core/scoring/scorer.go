package scoring

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// Breakdown holds the unweighted value of each factor, signed so that a larger value is
// always better. Times are in minutes.
type Breakdown struct {
	SimilarStartTime   float64 `json:"similarStartTime"`
	SimilarEndTime     float64 `json:"similarEndTime"`
	TimeBetweenClasses float64 `json:"timeBetweenClasses"`
	FreeBlock          float64 `json:"freeBlock"`
	FreeDay            float64 `json:"freeDay"`
	DayLength          float64 `json:"dayLength"`
}

// LabeledValue is one named factor of a breakdown
type LabeledValue struct {
	Label string
	Value float64
}

// Labeled returns the factors in a fixed display order
func (b Breakdown) Labeled() []LabeledValue {
	return []LabeledValue{
		{Label: "Similar start time", Value: b.SimilarStartTime},
		{Label: "Similar end time", Value: b.SimilarEndTime},
		{Label: "Time between classes", Value: b.TimeBetweenClasses},
		{Label: "Free block", Value: b.FreeBlock},
		{Label: "Free day", Value: b.FreeDay},
		{Label: "Day length", Value: b.DayLength},
	}
}

func (b Breakdown) String() string {
	return fmt.Sprintf("start=%.1f end=%.1f between=%.1f block=%.1f free=%.1f length=%.1f",
		b.SimilarStartTime, b.SimilarEndTime, b.TimeBetweenClasses, b.FreeBlock, b.FreeDay, b.DayLength)
}

// Weighted applies the priorities to the breakdown and sums the result
func (b Breakdown) Weighted(p Priorities) float64 {
	return p.SimilarStartTime*b.SimilarStartTime +
		p.SimilarEndTime*b.SimilarEndTime +
		p.TimeBetweenClasses*b.TimeBetweenClasses +
		p.FreeBlock*b.FreeBlock +
		p.FreeDay*b.FreeDay +
		p.DayLength*b.DayLength
}

// Scorer computes the fitness of complete schedules
type Scorer struct {
	priorities Priorities
	tuning     Tuning
}

// NewScorer creates a Scorer with the given weights and free-day constants
func NewScorer(priorities Priorities, tuning Tuning) *Scorer {
	return &Scorer{priorities: priorities, tuning: tuning}
}

// Priorities returns the weights used by the scorer
func (s *Scorer) Priorities() Priorities {
	return s.priorities
}

// ScoreSections merges the sections' weekly schedules and scores the result
func (s *Scorer) ScoreSections(sections []*model.Section) (float64, Breakdown) {
	schedules := lo.Map(sections, func(section *model.Section, _ int) *model.WeeklySchedule {
		return &section.Schedule
	})
	return s.score(model.Merge(schedules))
}

// Score returns the weighted scalar and the unweighted breakdown for a week.
// Per-day intervals may be in any order.
func (s *Scorer) Score(week model.WeeklySchedule) (float64, Breakdown) {
	return s.score(model.Merge([]*model.WeeklySchedule{&week}))
}

// score expects each day sorted by start
func (s *Scorer) score(week model.WeeklySchedule) (float64, Breakdown) {
	var (
		starts, ends, lengths, largestGaps []float64
		gaps                               []float64
		usedDays                           int
	)

	for day := range week {
		stats, ok := summariseDay(week[day])
		if !ok {
			continue
		}
		usedDays++
		starts = append(starts, stats.start)
		ends = append(ends, stats.end)
		lengths = append(lengths, stats.end-stats.start)
		largestGaps = append(largestGaps, stats.largestGap)
		gaps = append(gaps, stats.gaps...)
	}

	freeDays := float64(model.DaysPerWeek - usedDays)

	breakdown := Breakdown{
		SimilarStartTime:   -stdDev(starts),
		SimilarEndTime:     -stdDev(ends),
		TimeBetweenClasses: mean(gaps),
		FreeBlock:          mean(largestGaps),
		FreeDay:            (freeDays - s.tuning.FreeDayBaseline) * s.tuning.FreeDayMultiplier,
		DayLength:          -mean(lengths),
	}

	return breakdown.Weighted(s.priorities), breakdown
}

type dayStats struct {
	start      float64
	end        float64
	gaps       []float64
	largestGap float64
}

// summariseDay computes the day's span and gaps. Intervals must be sorted by start.
func summariseDay(intervals []model.Interval) (dayStats, bool) {
	if len(intervals) == 0 {
		return dayStats{}, false
	}

	stats := dayStats{start: float64(intervals[0].Start)}
	end := intervals[0].End()
	for i := 1; i < len(intervals); i++ {
		gap := float64(intervals[i].Start) - float64(intervals[i-1].End())
		gap = math.Max(gap, 0)
		stats.gaps = append(stats.gaps, gap)
		end = max(end, intervals[i].End())
	}
	stats.end = float64(end)
	stats.largestGap = lo.Max(stats.gaps)

	return stats, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}

// stdDev is the population standard deviation, 0 for fewer than two values
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	variance := lo.SumBy(values, func(v float64) float64 {
		return (v - m) * (v - m)
	}) / float64(len(values))
	return math.Sqrt(variance)
}
