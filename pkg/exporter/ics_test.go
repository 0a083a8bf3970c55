package exporter

import (
	"bytes"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

func timePtr(s string) *model.Time {
	t := model.MustParseTime(s)
	return &t
}

func calculus() *model.Section {
	hours := uint64(4)
	return &model.Section{
		Key:          12345,
		Campus:       "Boca Raton",
		Subject:      "MAC2311",
		Title:        "Calculus I",
		ScheduleType: "Lecture",
		CreditHours:  model.CreditHours{Hours: &hours},
		Faculty:      []model.Faculty{{Name: "Ada Lovelace", Primary: true}},
		Meetings: []model.Meeting{
			{
				Start:        timePtr("09:00"),
				End:          timePtr("09:50"),
				Days:         model.MWF,
				StartDate:    "01/09/2023",
				EndDate:      "01/20/2023",
				BuildingName: "General Classroom South",
				Room:         "101",
			},
			{Days: model.Never},
		},
	}
}

func TestGenerateICS(t *testing.T) {
	var buf bytes.Buffer
	events, err := GenerateICS([]*model.Section{calculus()}, &buf, Options{
		Name: "Spring 2023",
		Now:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, events, "time-free meetings are skipped")

	output := buf.String()
	assert.Contains(t, output, "SUMMARY:MAC2311 Calculus I (Lecture)")
	assert.Contains(t, output, "LOCATION:General Classroom South 101")
	assert.Contains(t, output, "DTSTART:20230109T090000Z")
	assert.Contains(t, output, "DTEND:20230109T095000Z")
	assert.Contains(t, output, "RRULE:FREQ=WEEKLY;UNTIL=20230120T095000Z;BYDAY=MO,WE,FR")
	assert.Contains(t, output, "UID:12345-0@class-scheduler")
	assert.Contains(t, output, "X-WR-CALNAME:Spring 2023")
}

func TestGenerateICS_FirstOccurrence(t *testing.T) {
	section := calculus()
	// Term starts on a Tuesday, so the first MWF meeting is Wednesday
	section.Meetings[0].StartDate = "01/10/2023"

	var buf bytes.Buffer
	_, err := GenerateICS([]*model.Section{section}, &buf, Options{
		Location: time.FixedZone("EST", -5*60*60),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "DTSTART;TZID=EST:20230111T090000")
}

func TestGenerateICS_TermFallback(t *testing.T) {
	section := calculus()
	section.Meetings[0].StartDate = ""
	section.Meetings[0].EndDate = ""

	var buf bytes.Buffer
	events, err := GenerateICS([]*model.Section{section}, &buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, events, "no date range means no events")

	buf.Reset()
	events, err = GenerateICS([]*model.Section{section}, &buf, Options{
		TermStart: time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC),
		TermEnd:   time.Date(2023, 4, 28, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, events)
	assert.Contains(t, buf.String(), "UNTIL=20230428T095000Z")
}

func TestGenerateICS_InvalidDate(t *testing.T) {
	section := calculus()
	section.Meetings[0].StartDate = "next week"

	var buf bytes.Buffer
	_, err := GenerateICS([]*model.Section{section}, &buf, Options{})
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Contains(t, err.Error(), "section 12345")
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"banner format", "01/09/2023", time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC)},
		{"iso format", "2023-04-28", time.Date(2023, 4, 28, 0, 0, 0, 0, time.UTC)},
		{"blank falls back", "  ", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveDate(tt.text, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestGenerateICS_EveningClassAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	seminar := &model.Section{
		Key:     40100,
		Subject: "PHI3000",
		Meetings: []model.Meeting{{
			Start:     timePtr("20:00"),
			End:       timePtr("21:15"),
			Days:      model.NewDaySet(model.Tuesday),
			StartDate: "08/22/2022",
			EndDate:   "12/09/2022",
		}},
	}

	var buf bytes.Buffer
	events, err := GenerateICS([]*model.Section{seminar}, &buf, Options{Location: loc})
	require.NoError(t, err)
	require.Equal(t, 1, events)

	output := buf.String()
	assert.Contains(t, output, "DTSTART;TZID=America/New_York:20220823T200000")
	assert.Contains(t, output, "DTEND;TZID=America/New_York:20220823T211500")
	assert.Contains(t, output, "RRULE:FREQ=WEEKLY;UNTIL=20221210T021500Z;BYDAY=TU")
	assert.NotContains(t, output, "DTSTART:")

	rule, err := meetingRule(seminar.Meetings[0], loc, Options{})
	require.NoError(t, err)
	occurrences := rule.All()
	require.Len(t, occurrences, 16)
	for _, occurrence := range occurrences {
		local := occurrence.In(loc)
		assert.Equal(t, time.Tuesday, local.Weekday(), local.String())
		assert.Equal(t, 20, local.Hour(), local.String())
	}
	assert.Equal(t, time.Date(2022, 12, 6, 20, 0, 0, 0, loc), occurrences[len(occurrences)-1].In(loc))
}
