package constraints

import (
	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// Constraint is a filtering rule applied to every candidate section before search.
// Constraints are independent of each other; a section is kept only if all of them allow it.
type Constraint interface {
	// Name returns a human-readable identifier for this constraint
	Name() string

	// Allows returns false if the section violates the constraint
	Allows(section *model.Section) bool
}

// AllowsAll returns true if every constraint allows the section
func AllowsAll(section *model.Section, constraints []Constraint) bool {
	for _, constraint := range constraints {
		if !constraint.Allows(section) {
			return false
		}
	}
	return true
}

// FirstViolation returns the first constraint that rejects the section, or nil
func FirstViolation(section *model.Section, constraints []Constraint) Constraint {
	for _, constraint := range constraints {
		if !constraint.Allows(section) {
			return constraint
		}
	}
	return nil
}
