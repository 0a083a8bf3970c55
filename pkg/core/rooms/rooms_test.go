package rooms

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

func meetingIn(building, room string, days model.DaySet, start, end string) model.Meeting {
	s, e := model.MustParseTime(start), model.MustParseTime(end)
	return model.Meeting{Start: &s, End: &e, Days: days, BuildingCode: building, Room: room}
}

func testCatalog(t *testing.T) model.Catalog {
	t.Helper()
	catalog, err := model.NewCatalog([]*model.Section{
		{Key: 1, Campus: "Boca Raton", Meetings: []model.Meeting{
			meetingIn("GS", "101", model.MWF, "09:00", "10:00"),
		}},
		{Key: 2, Campus: "Boca Raton", Meetings: []model.Meeting{
			meetingIn("GS", "101", model.MWF, "13:00", "14:00"),
			meetingIn("GS", "101", model.MWF, "09:30", "11:00"),
		}},
		{Key: 3, Campus: "Boca Raton", Meetings: []model.Meeting{
			meetingIn("EE", "96", model.NewDaySet(model.Monday), "08:00", "12:00"),
		}},
		{Key: 4, Campus: "Jupiter", Meetings: []model.Meeting{
			meetingIn("SC", "4", model.NewDaySet(model.Tuesday), "10:00", "11:00"),
		}},
		{Key: 5, Campus: "Boca Raton", Meetings: []model.Meeting{
			{Days: model.Never},
			meetingIn("", "", model.MWF, "07:00", "08:00"),
		}},
	})
	require.NoError(t, err)
	return catalog
}

func TestBuildAvailability(t *testing.T) {
	availability := BuildAvailability(testCatalog(t))

	require.Len(t, availability, 3, "meetings without a room are ignored")

	gs101 := availability[Room{Campus: "Boca Raton", Building: "GS", Name: "101"}]
	assert.Equal(t, []Span{{Start: 0, End: 540}, {Start: 660, End: 780}, {Start: 840, End: 1440}}, gs101[model.Monday])
	assert.Equal(t, []Span{{Start: 0, End: 1440}}, gs101[model.Tuesday])
	assert.Equal(t, []Span{{Start: 0, End: 1440}}, gs101[model.Sunday])
}

func TestBuildAvailability_BusyRoom(t *testing.T) {
	var sections []*model.Section
	for i, hour := 0, 19; hour >= 8; i, hour = i+1, hour-1 {
		sections = append(sections, &model.Section{
			Key:    model.SectionKey(i + 1),
			Campus: "Boca Raton",
			Meetings: []model.Meeting{
				meetingIn("GS", "101", model.Weekdays, fmt.Sprintf("%02d:00", hour), fmt.Sprintf("%02d:50", hour)),
			},
		})
	}
	catalog, err := model.NewCatalog(sections)
	require.NoError(t, err)

	availability := BuildAvailability(catalog)

	expected := []Span{{Start: 0, End: 8 * 60}}
	for hour := uint16(8); hour < 19; hour++ {
		expected = append(expected, Span{Start: hour*60 + 50, End: (hour + 1) * 60})
	}
	expected = append(expected, Span{Start: 19*60 + 50, End: 1440})

	gs101 := availability[Room{Campus: "Boca Raton", Building: "GS", Name: "101"}]
	assert.Equal(t, expected, gs101[model.Wednesday])
	assert.Equal(t, []Span{{Start: 0, End: 1440}}, gs101[model.Saturday])
}

func TestFreeSpans(t *testing.T) {
	tests := []struct {
		name     string
		busy     []model.Interval
		expected []Span
	}{
		{"idle day", nil, []Span{{Start: 0, End: 1440}}},
		{"busy from midnight", []model.Interval{{Start: 0, Duration: 60}}, []Span{{Start: 60, End: 1440}}},
		{"busy until midnight", []model.Interval{{Start: 1380, Duration: 60}}, []Span{{Start: 0, End: 1380}}},
		{"nested intervals", []model.Interval{{Start: 600, Duration: 120}, {Start: 630, Duration: 30}}, []Span{{Start: 0, End: 600}, {Start: 720, End: 1440}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, freeSpans(tt.busy))
		})
	}
}

func TestFreeAt(t *testing.T) {
	availability := BuildAvailability(testCatalog(t))

	// Monday 10:30: GS 101 busy until 11:00, EE 96 busy until 12:00, SC 4 free all day
	free := availability.FreeAt(model.Monday, 630)

	require.Len(t, free, 1)
	assert.Equal(t, "SC", free[0].Room.Building)
	assert.Equal(t, uint16(1440), free[0].Until)
	assert.Equal(t, uint16(810), free[0].Remaining)

	// Monday 12:00: GS 101 free until 13:00, EE 96 and SC 4 free for the rest of the day
	free = availability.FreeAt(model.Monday, 720)
	require.Len(t, free, 3)
	assert.Equal(t, "EE", free[0].Room.Building)
	assert.Equal(t, "SC", free[1].Room.Building)
	assert.Equal(t, "GS", free[2].Room.Building)
	assert.Equal(t, uint16(60), free[2].Remaining)
}

func TestGroupByCampus(t *testing.T) {
	free := BuildAvailability(testCatalog(t)).FreeAt(model.Monday, 720)

	grouped := GroupByCampus(free)

	assert.Equal(t, []string{"Boca Raton", "Jupiter"}, Campuses(grouped))
	require.Len(t, grouped["Boca Raton"], 2)
	assert.Equal(t, "EE", grouped["Boca Raton"][0].Room.Building)
	assert.Len(t, grouped["Jupiter"], 1)
}
