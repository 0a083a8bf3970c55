package solver

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/jakechorley/class-scheduler/pkg/core/constraints"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// FilterBuckets keeps only the candidates that pass every constraint.
// The input buckets are not modified.
func FilterBuckets(buckets []*Bucket, active []constraints.Constraint) []*Bucket {
	return lo.Map(buckets, func(bucket *Bucket, _ int) *Bucket {
		allowed := lo.Filter(bucket.Candidates, func(section *model.Section, _ int) bool {
			return constraints.AllowsAll(section, active)
		})
		return &Bucket{Include: bucket.Include, Candidates: allowed, Members: allowed}
	})
}

// ValidateBuckets drops sections that cannot take part in the search and collapses duplicates.
//
// A section with an incomplete meeting (only one of start or end set) is dropped. Meetings
// without any time are kept and contribute no intervals. Within a bucket, sections whose ordered
// meeting layouts (start, end, days) are identical collapse to the first one; the whole set is
// kept in Duplicates.
func ValidateBuckets(buckets []*Bucket) []*Bucket {
	return lo.Map(buckets, func(bucket *Bucket, _ int) *Bucket {
		valid := lo.Reject(bucket.Candidates, func(section *model.Section, _ int) bool {
			return section.HasIncompleteMeeting()
		})

		validated := &Bucket{
			Include:    bucket.Include,
			Members:    valid,
			Duplicates: make(map[model.SectionKey][]*model.Section),
		}

		representatives := make(map[string]model.SectionKey)
		for _, section := range valid {
			layout := meetingLayout(section)
			if key, ok := representatives[layout]; ok {
				validated.Duplicates[key] = append(validated.Duplicates[key], section)
				continue
			}
			representatives[layout] = section.Key
			validated.Candidates = append(validated.Candidates, section)
			validated.Duplicates[section.Key] = []*model.Section{section}
		}

		return validated
	})
}

// meetingLayout renders the ordered (start, end, days) triples of a section's meetings
func meetingLayout(section *model.Section) string {
	var b strings.Builder
	for _, meeting := range section.Meetings {
		fmt.Fprintf(&b, "%s-%s-%d;", optionalTime(meeting.Start), optionalTime(meeting.End), meeting.Days)
	}
	return b.String()
}

func optionalTime(t *model.Time) string {
	if t == nil {
		return "none"
	}
	return t.String()
}
