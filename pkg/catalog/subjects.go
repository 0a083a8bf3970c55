package catalog

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// SubjectCount is the number of fully timed sections offered for a subject
type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// TimedSectionCounts counts, per subject, the sections whose meetings all have concrete times.
// Results are ordered by count descending then subject; a positive limit keeps only the first entries.
func TimedSectionCounts(catalog model.Catalog, limit int) []SubjectCount {
	timed := lo.Filter(catalog.Sorted(), func(section *model.Section, _ int) bool {
		return section.IsFullyTimed()
	})

	counts := lo.MapToSlice(lo.CountValuesBy(timed, func(section *model.Section) string {
		return section.Subject
	}), func(subject string, count int) SubjectCount {
		return SubjectCount{Subject: subject, Count: count}
	})

	slices.SortFunc(counts, func(a, b SubjectCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Subject, b.Subject)
	})

	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
