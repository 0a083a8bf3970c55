package solver

import (
	"errors"
	"fmt"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// ErrUnknownSection is returned when a key is not in the catalog
var ErrUnknownSection = errors.New("unknown section")

// Resolve maps keys back to catalog sections, keeping their order
func Resolve(catalog model.Catalog, keys []model.SectionKey) ([]*model.Section, error) {
	sections := make([]*model.Section, 0, len(keys))
	for _, key := range keys {
		section, ok := catalog.Get(key)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownSection, key)
		}
		sections = append(sections, section)
	}
	return sections, nil
}
