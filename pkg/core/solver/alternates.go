package solver

import (
	"github.com/samber/lo"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// FindAlternates returns, for each section of the schedule, the other sections its bucket
// collapsed into it because they share its meeting layout. The schedule must be in bucket
// order, as produced by Enumerate, over buckets from ValidateBuckets.
func FindAlternates(buckets []*Bucket, schedule []*model.Section) [][]*model.Section {
	alternates := make([][]*model.Section, len(schedule))
	for i, chosen := range schedule {
		if i >= len(buckets) {
			break
		}
		alternates[i] = lo.Reject(buckets[i].Duplicates[chosen.Key], func(member *model.Section, _ int) bool {
			return member.Key == chosen.Key
		})
	}
	return alternates
}
