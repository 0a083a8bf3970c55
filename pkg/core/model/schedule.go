package model

import "sort"

// Interval is a span within one day, in minutes from midnight.
// It covers the half-open range [Start, Start+Duration).
type Interval struct {
	Start    uint16
	Duration uint16
}

// End returns the first minute after the interval
func (i Interval) End() uint16 {
	return i.Start + i.Duration
}

// contains reports whether minute falls inside the half-open interval
func (i Interval) contains(minute uint16) bool {
	return minute >= i.Start && minute < i.End()
}

// overlaps reports whether either interval's start falls inside the other
func (i Interval) overlaps(other Interval) bool {
	return i.contains(other.Start) || other.contains(i.Start)
}

// WeeklySchedule lists the busy intervals of one or more sections for each day of the week,
// indexed by Day. Per-day lists are not required to be sorted.
type WeeklySchedule [DaysPerWeek][]Interval

// NewWeeklySchedule derives a schedule from meetings.
// Meetings without both start and end times contribute nothing.
func NewWeeklySchedule(meetings []Meeting) WeeklySchedule {
	var schedule WeeklySchedule

	for _, meeting := range meetings {
		if !meeting.IsTimed() {
			continue
		}

		start := meeting.Start.Minutes()
		end := meeting.End.Minutes()
		var duration uint16
		if end > start {
			duration = end - start
		}
		interval := Interval{Start: start, Duration: duration}

		for _, day := range meeting.Days.Days() {
			schedule[day] = append(schedule[day], interval)
		}
	}

	return schedule
}

// Overlaps returns true if any interval of this schedule overlaps any interval of
// any of the others on the same day.
func (w *WeeklySchedule) Overlaps(others []*WeeklySchedule) bool {
	for day := range w {
		mine := w[day]
		if len(mine) == 0 {
			continue
		}
		for _, other := range others {
			for _, b := range other[day] {
				for _, a := range mine {
					if a.overlaps(b) {
						return true
					}
				}
			}
		}
	}
	return false
}

// IsEmpty returns true if there are no intervals on any day
func (w *WeeklySchedule) IsEmpty() bool {
	for day := range w {
		if len(w[day]) > 0 {
			return false
		}
	}
	return true
}

// Equal compares two schedules day by day, treating each day's list as a multiset
func (w *WeeklySchedule) Equal(other *WeeklySchedule) bool {
	for day := range w {
		if len(w[day]) != len(other[day]) {
			return false
		}
		a := sortedIntervals(w[day])
		b := sortedIntervals(other[day])
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// Merge flattens several schedules into one with each day sorted by start time
func Merge(schedules []*WeeklySchedule) WeeklySchedule {
	var merged WeeklySchedule
	for _, schedule := range schedules {
		for day := range schedule {
			merged[day] = append(merged[day], schedule[day]...)
		}
	}
	for day := range merged {
		merged[day] = sortedIntervals(merged[day])
	}
	return merged
}

func sortedIntervals(intervals []Interval) []Interval {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Duration < sorted[j].Duration
	})
	return sorted
}
