package rooms

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// minutesPerDay bounds every free span
const minutesPerDay = 24 * 60

// Room identifies a teaching room
type Room struct {
	Campus   string `json:"campus"`
	Building string `json:"building"`
	Name     string `json:"room"`
}

// Span is a free period within one day, [Start, End) in minutes from midnight
type Span struct {
	Start uint16 `json:"start"`
	End   uint16 `json:"end"`
}

// Availability holds the free spans of every room for each day of the week
type Availability map[Room][model.DaysPerWeek][]Span

// FreeRoom is a room free at the queried time
type FreeRoom struct {
	Room Room `json:"room"`
	// Until is the minute the room becomes busy again (1440 if free for the rest of the day)
	Until uint16 `json:"until"`
	// Remaining is the number of free minutes left from the queried time
	Remaining uint16 `json:"remaining"`
}

// BuildAvailability derives free spans from the timed meetings of every catalog section.
// Meetings without a building or room are ignored.
func BuildAvailability(catalog model.Catalog) Availability {
	meetings := make(map[Room][]model.Meeting)
	for _, section := range catalog.Sorted() {
		for _, meeting := range section.Meetings {
			if !meeting.IsTimed() || meeting.BuildingCode == "" || meeting.Room == "" {
				continue
			}
			room := Room{Campus: section.Campus, Building: meeting.BuildingCode, Name: meeting.Room}
			meetings[room] = append(meetings[room], meeting)
		}
	}

	availability := make(Availability, len(meetings))
	for room, roomMeetings := range meetings {
		week := model.NewWeeklySchedule(roomMeetings)
		busy := model.Merge([]*model.WeeklySchedule{&week})

		var free [model.DaysPerWeek][]Span
		for day := range busy {
			free[day] = freeSpans(busy[day])
		}
		availability[room] = free
	}
	return availability
}

// freeSpans subtracts sorted busy intervals from the whole day
func freeSpans(busy []model.Interval) []Span {
	var spans []Span
	cursor := uint16(0)
	for _, interval := range busy {
		if interval.Start > cursor {
			spans = append(spans, Span{Start: cursor, End: interval.Start})
		}
		cursor = max(cursor, min(interval.End(), minutesPerDay))
	}
	if cursor < minutesPerDay {
		spans = append(spans, Span{Start: cursor, End: minutesPerDay})
	}
	return spans
}

// FreeAt lists rooms free at the given day and minute, longest remaining time first
func (a Availability) FreeAt(day model.Day, minute uint16) []FreeRoom {
	var free []FreeRoom
	for room, days := range a {
		for _, span := range days[day] {
			if minute >= span.Start && minute < span.End {
				free = append(free, FreeRoom{Room: room, Until: span.End, Remaining: span.End - minute})
				break
			}
		}
	}

	slices.SortFunc(free, func(x, y FreeRoom) int {
		if c := cmp.Compare(y.Remaining, x.Remaining); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Room.Campus, y.Room.Campus); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Room.Building, y.Room.Building); c != 0 {
			return c
		}
		return cmp.Compare(x.Room.Name, y.Room.Name)
	})
	return free
}

// GroupByCampus groups free rooms by campus, keeping their order within each campus
func GroupByCampus(free []FreeRoom) map[string][]FreeRoom {
	return lo.GroupBy(free, func(room FreeRoom) string {
		return room.Room.Campus
	})
}

// Campuses returns the campus names of a grouping in sorted order
func Campuses(grouped map[string][]FreeRoom) []string {
	campuses := lo.Keys(grouped)
	slices.Sort(campuses)
	return campuses
}
