package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

func timePtr(s string) *model.Time {
	t := model.MustParseTime(s)
	return &t
}

func timed(days model.DaySet, start, end string) model.Meeting {
	return model.Meeting{Start: timePtr(start), End: timePtr(end), Days: days}
}

func newSection(key model.SectionKey, subject string, meetings ...model.Meeting) *model.Section {
	section := &model.Section{
		Key:          key,
		Subject:      subject,
		Campus:       "Boca Raton",
		ScheduleType: "Lecture",
		Meetings:     meetings,
	}
	section.BuildSchedule()
	return section
}

func bucketOf(include Include, sections ...*model.Section) *Bucket {
	return &Bucket{Include: include, Candidates: sections, Members: sections}
}

func mustCatalog(t *testing.T, sections ...*model.Section) model.Catalog {
	t.Helper()
	catalog, err := model.NewCatalog(sections)
	require.NoError(t, err)
	return catalog
}

// collect enumerates and returns every schedule as its key list
func collect(t *testing.T, buckets []*Bucket, options SearchOptions) ([][]model.SectionKey, Stats) {
	t.Helper()
	var schedules [][]model.SectionKey
	stats, err := Enumerate(context.Background(), buckets, options, func(schedule []*model.Section) error {
		keys := make([]model.SectionKey, len(schedule))
		for i, section := range schedule {
			keys[i] = section.Key
		}
		schedules = append(schedules, keys)
		return nil
	})
	require.NoError(t, err)
	return schedules, stats
}

func sortKeyLists(lists [][]model.SectionKey) {
	sort.Slice(lists, func(i, j int) bool {
		return fmt.Sprint(lists[i]) < fmt.Sprint(lists[j])
	})
}

var monday = model.NewDaySet(model.Monday)

func TestEnumerate_BackToBackSectionsFit(t *testing.T) {
	buckets := []*Bucket{
		bucketOf(CourseInclude("MAC2311", ""), newSection(1, "MAC2311", timed(monday, "09:00", "10:00"))),
		bucketOf(CourseInclude("COP3530", ""), newSection(2, "COP3530", timed(monday, "10:00", "11:00"))),
	}

	schedules, stats := collect(t, buckets, SearchOptions{})

	assert.Equal(t, [][]model.SectionKey{{1, 2}}, schedules)
	assert.Equal(t, uint64(1), stats.Leaves)
	assert.Equal(t, uint64(1), stats.SearchSpace)
}

func TestEnumerate_OverlappingSectionsDoNotFit(t *testing.T) {
	buckets := []*Bucket{
		bucketOf(CourseInclude("MAC2311", ""), newSection(1, "MAC2311", timed(monday, "09:00", "10:00"))),
		bucketOf(CourseInclude("COP3530", ""), newSection(2, "COP3530", timed(monday, "09:30", "10:30"))),
	}

	schedules, stats := collect(t, buckets, SearchOptions{})

	assert.Empty(t, schedules)
	assert.Equal(t, uint64(0), stats.Leaves)
}

func TestEnumerate_OneSchedulePerCompatibleCandidate(t *testing.T) {
	buckets := []*Bucket{
		bucketOf(CourseInclude("MAC2311", ""),
			newSection(1, "MAC2311", timed(monday, "08:00", "08:50")),
			newSection(2, "MAC2311", timed(model.NewDaySet(model.Tuesday), "08:00", "08:50")),
			newSection(3, "MAC2311", timed(monday, "13:00", "13:50")),
		),
		bucketOf(CourseInclude("COP3530", ""), newSection(4, "COP3530", timed(monday, "10:00", "11:00"))),
	}

	schedules, _ := collect(t, buckets, SearchOptions{})
	sortKeyLists(schedules)

	assert.Equal(t, [][]model.SectionKey{{1, 4}, {2, 4}, {3, 4}}, schedules)
}

func TestEnumerate_EmptyBucketYieldsNothing(t *testing.T) {
	buckets := []*Bucket{
		bucketOf(CourseInclude("MAC2311", ""), newSection(1, "MAC2311", timed(monday, "09:00", "10:00"))),
		bucketOf(CourseInclude("PHY2048", "")),
	}

	schedules, stats := collect(t, buckets, SearchOptions{})

	assert.Empty(t, schedules)
	assert.Equal(t, uint64(0), stats.Nodes, "search never starts")
	assert.Equal(t, uint64(0), stats.SearchSpace)
	assert.Equal(t, []string{"PHY2048"}, EmptyBuckets(buckets))
}

func TestEnumerate_NoBuckets(t *testing.T) {
	schedules, stats := collect(t, nil, SearchOptions{})

	assert.Empty(t, schedules)
	assert.Equal(t, Stats{}, stats)
}

func TestEnumerate_TimeFreeSectionsFitAnywhere(t *testing.T) {
	online := newSection(2, "ENC1101", model.Meeting{Days: model.Never})
	buckets := []*Bucket{
		bucketOf(CourseInclude("MAC2311", ""), newSection(1, "MAC2311", timed(model.Everyday, "00:00", "23:59"))),
		bucketOf(CourseInclude("ENC1101", ""), online),
	}

	schedules, _ := collect(t, buckets, SearchOptions{})

	assert.Equal(t, [][]model.SectionKey{{1, 2}}, schedules)
}

func TestEnumerate_PrunesDeadBranches(t *testing.T) {
	// Section 1 blocks the only candidate of the third bucket
	buckets := []*Bucket{
		bucketOf(CourseInclude("A", ""),
			newSection(1, "A", timed(monday, "09:00", "10:00")),
			newSection(2, "A", timed(monday, "11:00", "12:00")),
		),
		bucketOf(CourseInclude("B", ""),
			newSection(3, "B", timed(monday, "13:00", "14:00")),
			newSection(4, "B", timed(monday, "14:00", "15:00")),
		),
		bucketOf(CourseInclude("C", ""),
			newSection(5, "C", timed(monday, "09:30", "10:30")),
		),
	}

	schedules, stats := collect(t, buckets, SearchOptions{})
	sortKeyLists(schedules)

	assert.Equal(t, [][]model.SectionKey{{2, 3, 5}, {2, 4, 5}}, schedules)
	assert.Equal(t, uint64(2), stats.Leaves)
	assert.Equal(t, uint64(4), stats.SearchSpace)
}

// gridBuckets builds buckets whose sections spread over a small grid of times and days so that
// many combinations collide.
func gridBuckets(bucketCount, perBucket int) []*Bucket {
	dayChoices := []model.DaySet{model.MWF, model.NewDaySet(model.Tuesday, model.Thursday), monday, model.Weekdays}
	buckets := make([]*Bucket, bucketCount)
	key := model.SectionKey(100)
	for b := 0; b < bucketCount; b++ {
		subject := fmt.Sprintf("SUB%d", b)
		var sections []*model.Section
		for i := 0; i < perBucket; i++ {
			startHour := 8 + (b*3+i*5)%9
			startMinute := ((b + i) % 2) * 30
			start := fmt.Sprintf("%02d%02d", startHour, startMinute)
			end := fmt.Sprintf("%02d%02d", startHour+1, startMinute+15)
			sections = append(sections, newSection(key, subject, timed(dayChoices[(b+i)%len(dayChoices)], start, end)))
			key++
		}
		buckets[b] = bucketOf(CourseInclude(subject, ""), sections...)
	}
	return buckets
}

// naiveCount checks the full cartesian product pairwise
func naiveCount(buckets []*Bucket) int {
	var count int
	chosen := make([]*model.Section, 0, len(buckets))
	var walk func(int)
	walk = func(b int) {
		if b == len(buckets) {
			count++
			return
		}
		for _, candidate := range buckets[b].Candidates {
			clash := false
			for _, previous := range chosen {
				if candidate.Schedule.Overlaps([]*model.WeeklySchedule{&previous.Schedule}) {
					clash = true
					break
				}
			}
			if clash {
				continue
			}
			chosen = append(chosen, candidate)
			walk(b + 1)
			chosen = chosen[:len(chosen)-1]
		}
	}
	walk(0)
	return count
}

func TestEnumerate_MatchesExhaustiveSearch(t *testing.T) {
	buckets := gridBuckets(5, 6)

	schedules, stats := collect(t, buckets, SearchOptions{})

	expected := naiveCount(buckets)
	require.Greater(t, expected, 0, "grid should admit some schedules")
	assert.Len(t, schedules, expected)
	assert.Equal(t, uint64(expected), stats.Leaves)
	assert.Equal(t, uint64(6*6*6*6*6), stats.SearchSpace)
}

func TestEnumerate_EverySchedulePassesPairwiseCheck(t *testing.T) {
	buckets := gridBuckets(5, 6)
	bySection := make(map[model.SectionKey]*model.Section)
	for _, bucket := range buckets {
		for _, section := range bucket.Candidates {
			bySection[section.Key] = section
		}
	}

	schedules, _ := collect(t, buckets, SearchOptions{})

	for _, keys := range schedules {
		require.Len(t, keys, len(buckets))
		sections := make([]*model.Section, len(keys))
		for i, key := range keys {
			sections[i] = bySection[key]
			assert.True(t, buckets[i].Include.Matches(sections[i]), "section is in include order")
		}
		assert.Empty(t, ValidateSchedule(sections, nil))
	}
}

func TestEnumerate_ParallelMatchesSequential(t *testing.T) {
	buckets := gridBuckets(5, 6)

	sequential, sequentialStats := collect(t, buckets, SearchOptions{})
	parallel, parallelStats := collect(t, buckets, SearchOptions{Workers: 4})
	sortKeyLists(sequential)
	sortKeyLists(parallel)

	assert.Equal(t, sequential, parallel)
	assert.Equal(t, sequentialStats.Leaves, parallelStats.Leaves)
	assert.Equal(t, sequentialStats.SearchSpace, parallelStats.SearchSpace)
}

func TestEnumerate_NodeBudget(t *testing.T) {
	buckets := gridBuckets(5, 6)

	var emitted int
	_, err := Enumerate(context.Background(), buckets, SearchOptions{NodeBudget: 3}, func([]*model.Section) error {
		emitted++
		return nil
	})

	assert.ErrorIs(t, err, ErrBudgetExhausted)
	assert.LessOrEqual(t, emitted, 1)
}

func TestEnumerate_NodeBudgetParallel(t *testing.T) {
	buckets := gridBuckets(5, 6)

	_, err := Enumerate(context.Background(), buckets, SearchOptions{Workers: 3, NodeBudget: 5}, func([]*model.Section) error {
		return nil
	})

	assert.ErrorIs(t, err, ErrBudgetExhausted)
}

func TestEnumerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Enumerate(ctx, gridBuckets(3, 3), SearchOptions{}, func([]*model.Section) error {
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnumerate_EmitErrorStops(t *testing.T) {
	stop := errors.New("stop")
	var emitted int

	_, err := Enumerate(context.Background(), gridBuckets(5, 6), SearchOptions{}, func([]*model.Section) error {
		emitted++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, emitted)
}

func TestSearchSpace_Saturates(t *testing.T) {
	big := make([]*model.Section, 1<<16)
	buckets := make([]*Bucket, 5)
	for i := range buckets {
		buckets[i] = &Bucket{Candidates: big}
	}

	assert.Equal(t, ^uint64(0), searchSpace(buckets))
}
