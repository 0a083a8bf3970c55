package constraints

import (
	"fmt"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// BlockDaysConstraint rejects sections that meet on any of the blocked days.
//
// Any meeting whose day set intersects the blocked days disqualifies the whole section,
// regardless of time, even if most meetings fall on allowed days.
type BlockDaysConstraint struct {
	days model.DaySet
}

// NewBlockDaysConstraint creates a constraint blocking the given days
func NewBlockDaysConstraint(days model.DaySet) *BlockDaysConstraint {
	return &BlockDaysConstraint{days: days}
}

func (c *BlockDaysConstraint) Name() string {
	return fmt.Sprintf("BlockDays(%s)", c.days)
}

func (c *BlockDaysConstraint) Allows(section *model.Section) bool {
	for _, meeting := range section.Meetings {
		if meeting.Days.Intersects(c.days) {
			return false
		}
	}
	return true
}
