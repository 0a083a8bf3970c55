package constraints

import (
	"fmt"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// CampusConstraint keeps only sections taught on the named campus (exact match)
type CampusConstraint struct {
	name string
}

// NewCampusConstraint creates a CampusConstraint
func NewCampusConstraint(name string) *CampusConstraint {
	return &CampusConstraint{name: name}
}

func (c *CampusConstraint) Name() string {
	return fmt.Sprintf("Campus(%s)", c.name)
}

func (c *CampusConstraint) Allows(section *model.Section) bool {
	return section.Campus == c.name
}
