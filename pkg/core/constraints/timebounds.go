package constraints

import (
	"fmt"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// StartAfterConstraint requires meetings on the given days to start no earlier than a time.
//
// Only meetings whose days intersect the constraint's days are checked.
// A checked meeting without a start time fails, since compliance cannot be shown.
type StartAfterConstraint struct {
	time model.Time
	days model.DaySet
}

// NewStartAfterConstraint creates a StartAfterConstraint
func NewStartAfterConstraint(time model.Time, days model.DaySet) *StartAfterConstraint {
	return &StartAfterConstraint{time: time, days: days}
}

func (c *StartAfterConstraint) Name() string {
	return fmt.Sprintf("StartAfter(%s, %s)", c.time, c.days)
}

func (c *StartAfterConstraint) Allows(section *model.Section) bool {
	for _, meeting := range section.Meetings {
		if !meeting.Days.Intersects(c.days) {
			continue
		}
		if meeting.Start == nil || meeting.Start.Before(c.time) {
			return false
		}
	}
	return true
}

// EndBeforeConstraint requires meetings on the given days to end no later than a time.
// Mirrors StartAfterConstraint: a checked meeting without an end time fails.
type EndBeforeConstraint struct {
	time model.Time
	days model.DaySet
}

// NewEndBeforeConstraint creates an EndBeforeConstraint
func NewEndBeforeConstraint(time model.Time, days model.DaySet) *EndBeforeConstraint {
	return &EndBeforeConstraint{time: time, days: days}
}

func (c *EndBeforeConstraint) Name() string {
	return fmt.Sprintf("EndBefore(%s, %s)", c.time, c.days)
}

func (c *EndBeforeConstraint) Allows(section *model.Section) bool {
	for _, meeting := range section.Meetings {
		if !meeting.Days.Intersects(c.days) {
			continue
		}
		if meeting.End == nil || meeting.End.After(c.time) {
			return false
		}
	}
	return true
}

// BlockTimesConstraint rejects sections with a meeting touching a blocked window on the given days.
//
// The meeting span [start, end] and the blocked window [start, end] are compared as closed ranges,
// checked in both directions so a window inside a meeting is caught as well as a meeting inside
// the window. A checked meeting without concrete times fails.
type BlockTimesConstraint struct {
	start model.Time
	end   model.Time
	days  model.DaySet
}

// NewBlockTimesConstraint creates a BlockTimesConstraint
func NewBlockTimesConstraint(start, end model.Time, days model.DaySet) *BlockTimesConstraint {
	return &BlockTimesConstraint{start: start, end: end, days: days}
}

func (c *BlockTimesConstraint) Name() string {
	return fmt.Sprintf("BlockTimes(%s-%s, %s)", c.start, c.end, c.days)
}

func (c *BlockTimesConstraint) Allows(section *model.Section) bool {
	for _, meeting := range section.Meetings {
		if !meeting.Days.Intersects(c.days) {
			continue
		}
		if !meeting.IsTimed() {
			return false
		}

		meetingStart, meetingEnd := *meeting.Start, *meeting.End
		if within(meetingStart, c.start, c.end) ||
			within(meetingEnd, c.start, c.end) ||
			within(c.start, meetingStart, meetingEnd) ||
			within(c.end, meetingStart, meetingEnd) {
			return false
		}
	}
	return true
}

// within reports whether t lies in the closed range [lo, hi]
func within(t, lo, hi model.Time) bool {
	return t.Compare(lo) >= 0 && t.Compare(hi) <= 0
}
