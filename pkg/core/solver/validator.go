package solver

import (
	"fmt"

	"github.com/jakechorley/class-scheduler/pkg/core/constraints"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

const noOverlapCheck = "NoOverlap"

// ScheduleValidationError describes one violation found in a complete schedule
type ScheduleValidationError struct {
	SectionKey model.SectionKey
	// OtherKey is set for overlap violations
	OtherKey    model.SectionKey
	CheckName   string
	Description string
}

func (e ScheduleValidationError) Error() string {
	return fmt.Sprintf("section %d: %s: %s", e.SectionKey, e.CheckName, e.Description)
}

// ValidateSchedule re-checks a complete schedule: no two sections may overlap and every
// section must pass every constraint. An empty result means the schedule is valid.
func ValidateSchedule(schedule []*model.Section, active []constraints.Constraint) []ScheduleValidationError {
	var errors []ScheduleValidationError

	for i, section := range schedule {
		for _, other := range schedule[i+1:] {
			if section.Schedule.Overlaps([]*model.WeeklySchedule{&other.Schedule}) {
				errors = append(errors, ScheduleValidationError{
					SectionKey:  section.Key,
					OtherKey:    other.Key,
					CheckName:   noOverlapCheck,
					Description: fmt.Sprintf("overlaps section %d", other.Key),
				})
			}
		}

		for _, constraint := range active {
			if !constraint.Allows(section) {
				errors = append(errors, ScheduleValidationError{
					SectionKey:  section.Key,
					CheckName:   constraint.Name(),
					Description: "constraint not satisfied",
				})
			}
		}
	}

	return errors
}
