package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(s string) *Time {
	t := MustParseTime(s)
	return &t
}

func timedSection(key SectionKey, days DaySet, start, end string) *Section {
	section := &Section{
		Key:     key,
		Subject: "SUB1000",
		Meetings: []Meeting{
			{Start: timePtr(start), End: timePtr(end), Days: days},
		},
	}
	section.BuildSchedule()
	return section
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Time
		wantErr  bool
	}{
		{"fixed width", "0930", Time{9, 30}, false},
		{"colon", "09:30", Time{9, 30}, false},
		{"single digit hour with colon", "9:05", Time{9, 5}, false},
		{"midnight", "0000", Time{0, 0}, false},
		{"last minute", "23:59", Time{23, 59}, false},
		{"hour out of range", "2400", Time{}, true},
		{"minute out of range", "1060", Time{}, true},
		{"too short", "930", Time{}, true},
		{"not a number", "ab:cd", Time{}, true},
		{"empty", "", Time{}, true},
		{"short minutes", "9:5", Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseTime(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, parsed)
		})
	}
}

func TestTime_Ordering(t *testing.T) {
	assert.True(t, MustParseTime("0900").Before(MustParseTime("0901")))
	assert.True(t, MustParseTime("1000").After(MustParseTime("0959")))
	assert.Equal(t, 0, MustParseTime("12:00").Compare(MustParseTime("1200")))
	assert.Equal(t, uint16(570), MustParseTime("09:30").Minutes())
	assert.Equal(t, "07:05", MustParseTime("0705").String())
}

func TestTime_TextRoundTrip(t *testing.T) {
	var parsed Time
	require.NoError(t, parsed.UnmarshalText([]byte("13:45")))
	text, err := parsed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "13:45", string(text))

	assert.Error(t, parsed.UnmarshalText([]byte("25:00")))
}

func TestDaySet_Operations(t *testing.T) {
	assert.Equal(t, Never, MWF.Intersect(NewDaySet(Tuesday, Thursday)))
	assert.Equal(t, NewDaySet(Friday), MWF.Intersect(TTF))
	assert.Equal(t, Weekdays, MWF.Union(NewDaySet(Tuesday, Thursday)))
	assert.Equal(t, Weekend, Weekdays.Complement())
	assert.Equal(t, Never, Everyday.Complement())
	assert.True(t, Everyday.Complement().IsEmpty())
	assert.True(t, MWF.Intersects(TTF))
	assert.False(t, MWF.Intersects(Weekend))
	assert.Equal(t, []Day{Monday, Wednesday, Friday}, MWF.Days())
	assert.Equal(t, "MO,WE,FR", MWF.String())
	assert.Equal(t, "never", Never.String())
}

func TestParseDaySet(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected DaySet
		wantErr  bool
	}{
		{"named everyday", "everyday", Everyday, false},
		{"named weekdays mixed case", "Weekdays", Weekdays, false},
		{"named never", "never", Never, false},
		{"two letter list", "MO,WE,FR", MWF, false},
		{"lowercase list with spaces", "tu, th", NewDaySet(Tuesday, Thursday), false},
		{"sunday", "SU", NewDaySet(Sunday), false},
		{"rrule", "FREQ=WEEKLY;BYDAY=SA,SU", Weekend, false},
		{"rrule with prefix", "RRULE:FREQ=WEEKLY;BYDAY=FR", NewDaySet(Friday), false},
		{"garbage", "someday", Never, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseDaySet(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, set)
		})
	}
}

func TestDaySet_RRuleWeekdaysRoundTrip(t *testing.T) {
	for _, set := range []DaySet{MWF, TTF, Weekend, Everyday, NewDaySet(Sunday)} {
		var rebuilt DaySet
		for _, weekday := range set.RRuleWeekdays() {
			rebuilt |= NewDaySet(FromRRuleWeekday(weekday))
		}
		assert.Equal(t, set, rebuilt)
	}
}

func TestMeeting_TimeStates(t *testing.T) {
	timed := Meeting{Start: timePtr("0900"), End: timePtr("0950"), Days: MWF}
	free := Meeting{Days: Never}
	incomplete := Meeting{Start: timePtr("0900"), Days: MWF}

	assert.True(t, timed.IsTimed())
	assert.False(t, timed.IsIncomplete())
	assert.True(t, free.IsTimeFree())
	assert.False(t, free.IsIncomplete())
	assert.True(t, incomplete.IsIncomplete())
}

func TestNewWeeklySchedule(t *testing.T) {
	meetings := []Meeting{
		{Start: timePtr("0900"), End: timePtr("0950"), Days: MWF},
		{Start: timePtr("1400"), End: timePtr("1650"), Days: NewDaySet(Wednesday)},
		{Days: Everyday},
	}

	schedule := NewWeeklySchedule(meetings)

	assert.Equal(t, []Interval{{Start: 540, Duration: 50}}, schedule[Monday])
	assert.Equal(t, []Interval{{Start: 540, Duration: 50}, {Start: 840, Duration: 170}}, schedule[Wednesday])
	assert.Empty(t, schedule[Tuesday])
	assert.Empty(t, schedule[Sunday])
}

func TestWeeklySchedule_UntimedMeetingsContributeNothing(t *testing.T) {
	meetings := []Meeting{
		{Days: Everyday},
		{Start: timePtr("0900"), Days: Everyday},
		{End: timePtr("0900"), Days: Everyday},
	}

	schedule := NewWeeklySchedule(meetings)
	assert.True(t, schedule.IsEmpty())

	busy := timedSection(1, Everyday, "0000", "2359")
	assert.False(t, schedule.Overlaps([]*WeeklySchedule{&busy.Schedule}))
	assert.False(t, busy.Schedule.Overlaps([]*WeeklySchedule{&schedule}))
}

func TestWeeklySchedule_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a        *Section
		b        *Section
		expected bool
	}{
		{
			name:     "back to back does not overlap",
			a:        timedSection(1, NewDaySet(Monday), "0900", "1000"),
			b:        timedSection(2, NewDaySet(Monday), "1000", "1100"),
			expected: false,
		},
		{
			name:     "partial overlap",
			a:        timedSection(1, NewDaySet(Monday), "0900", "1000"),
			b:        timedSection(2, NewDaySet(Monday), "0930", "1030"),
			expected: true,
		},
		{
			name:     "containment",
			a:        timedSection(1, NewDaySet(Monday), "0900", "1200"),
			b:        timedSection(2, NewDaySet(Monday), "1000", "1030"),
			expected: true,
		},
		{
			name:     "same start",
			a:        timedSection(1, NewDaySet(Monday), "0900", "0950"),
			b:        timedSection(2, NewDaySet(Monday), "0900", "0915"),
			expected: true,
		},
		{
			name:     "same time different days",
			a:        timedSection(1, MWF, "0900", "1000"),
			b:        timedSection(2, NewDaySet(Tuesday, Thursday), "0900", "1000"),
			expected: false,
		},
		{
			name:     "shared day only",
			a:        timedSection(1, MWF, "0900", "1000"),
			b:        timedSection(2, TTF, "0930", "1000"),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab := tt.a.Schedule.Overlaps([]*WeeklySchedule{&tt.b.Schedule})
			ba := tt.b.Schedule.Overlaps([]*WeeklySchedule{&tt.a.Schedule})
			assert.Equal(t, tt.expected, ab)
			assert.Equal(t, ab, ba, "overlap must be symmetric")
		})
	}
}

func TestWeeklySchedule_OverlapsAnyOfSeveral(t *testing.T) {
	candidate := timedSection(1, NewDaySet(Friday), "1300", "1400")
	chosen := []*WeeklySchedule{
		&timedSection(2, NewDaySet(Monday), "1300", "1400").Schedule,
		&timedSection(3, NewDaySet(Friday), "1350", "1500").Schedule,
	}

	assert.True(t, candidate.Schedule.Overlaps(chosen))
	assert.False(t, candidate.Schedule.Overlaps(chosen[:1]))
	assert.False(t, candidate.Schedule.Overlaps(nil))
}

func TestWeeklySchedule_EqualIgnoresOrder(t *testing.T) {
	a := WeeklySchedule{}
	a[Monday] = []Interval{{540, 50}, {840, 60}}
	b := WeeklySchedule{}
	b[Monday] = []Interval{{840, 60}, {540, 50}}
	c := WeeklySchedule{}
	c[Monday] = []Interval{{840, 60}}

	assert.True(t, a.Equal(&b))
	assert.False(t, a.Equal(&c))
}

func TestMerge_SortsEachDay(t *testing.T) {
	late := timedSection(1, NewDaySet(Monday), "1400", "1500")
	early := timedSection(2, NewDaySet(Monday), "0800", "0900")

	merged := Merge([]*WeeklySchedule{&late.Schedule, &early.Schedule})

	require.Len(t, merged[Monday], 2)
	assert.Equal(t, uint16(480), merged[Monday][0].Start)
	assert.Equal(t, uint16(840), merged[Monday][1].Start)
}

func TestNewCatalog(t *testing.T) {
	a := &Section{Key: 20, Meetings: []Meeting{{Start: timePtr("0900"), End: timePtr("1000"), Days: MWF}}}
	b := &Section{Key: 10}

	catalog, err := NewCatalog([]*Section{a, b})
	require.NoError(t, err)

	sorted := catalog.Sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, SectionKey(10), sorted[0].Key)
	assert.Equal(t, SectionKey(20), sorted[1].Key)
	assert.False(t, catalog.MustGet(20).Schedule.IsEmpty(), "schedule should be built")

	_, ok := catalog.Get(99)
	assert.False(t, ok)
	assert.Panics(t, func() { catalog.MustGet(99) })

	_, err = NewCatalog([]*Section{{Key: 1}, {Key: 1}})
	assert.Error(t, err)
}

func TestSection_Credits(t *testing.T) {
	three := uint64(3)
	one := uint64(1)

	assert.Equal(t, uint64(3), (&Section{CreditHours: CreditHours{Hours: &three, Low: &one}}).Credits())
	assert.Equal(t, uint64(1), (&Section{CreditHours: CreditHours{Low: &one}}).Credits())
	assert.Equal(t, uint64(0), (&Section{}).Credits())
}
