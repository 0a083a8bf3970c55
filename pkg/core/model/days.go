package model

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
)

// Day is a weekday index. Sunday is 0 to match the per-day layout of WeeklySchedule.
type Day uint8

const (
	Sunday Day = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// DaysPerWeek is the number of per-day slots in a WeeklySchedule
const DaysPerWeek = 7

var dayNames = [DaysPerWeek]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (d Day) String() string {
	if int(d) < DaysPerWeek {
		return dayNames[d]
	}
	return fmt.Sprintf("Day(%d)", d)
}

// DaySet is a set of weekdays, one independent flag per day
type DaySet uint8

// Named day sets
const (
	Never    DaySet = 0
	Everyday DaySet = 1<<DaysPerWeek - 1
	Weekdays DaySet = 1<<Monday | 1<<Tuesday | 1<<Wednesday | 1<<Thursday | 1<<Friday
	Weekend  DaySet = 1<<Saturday | 1<<Sunday
	MWF      DaySet = 1<<Monday | 1<<Wednesday | 1<<Friday
	TTF      DaySet = 1<<Tuesday | 1<<Thursday | 1<<Friday
)

// NewDaySet builds a set from individual days
func NewDaySet(days ...Day) DaySet {
	var set DaySet
	for _, d := range days {
		set |= 1 << d
	}
	return set
}

// Has reports whether the day is in the set
func (s DaySet) Has(d Day) bool {
	return s&(1<<d) != 0
}

func (s DaySet) Intersect(other DaySet) DaySet {
	return s & other
}

func (s DaySet) Union(other DaySet) DaySet {
	return s | other
}

// Complement returns the days not in the set
func (s DaySet) Complement() DaySet {
	return ^s & Everyday
}

// Intersects reports whether the two sets share at least one day
func (s DaySet) Intersects(other DaySet) bool {
	return s&other != Never
}

func (s DaySet) IsEmpty() bool {
	return s&Everyday == Never
}

// Days lists the days in the set from Sunday to Saturday
func (s DaySet) Days() []Day {
	days := make([]Day, 0, DaysPerWeek)
	for d := Sunday; d <= Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// String renders the set using two-letter codes, e.g. "MO,WE,FR"
func (s DaySet) String() string {
	if s.IsEmpty() {
		return "never"
	}
	codes := make([]string, 0, DaysPerWeek)
	for _, d := range s.Days() {
		codes = append(codes, strings.ToUpper(dayNames[d][:2]))
	}
	return strings.Join(codes, ",")
}

// MarshalText implements encoding.TextMarshaler
func (s DaySet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *DaySet) UnmarshalText(text []byte) error {
	parsed, err := ParseDaySet(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

var namedDaySets = map[string]DaySet{
	"never":    Never,
	"everyday": Everyday,
	"weekdays": Weekdays,
	"weekend":  Weekend,
	"mwf":      MWF,
	"ttf":      TTF,
}

// ParseDaySet parses a day set expression. Accepted forms:
//   - a named set: everyday, weekdays, weekend, never, mwf, ttf
//   - a comma separated list of two-letter codes: "MO,WE,FR"
//   - a weekly RRULE: "FREQ=WEEKLY;BYDAY=TU,TH"
func ParseDaySet(expr string) (DaySet, error) {
	trimmed := strings.TrimSpace(expr)
	if named, ok := namedDaySets[strings.ToLower(trimmed)]; ok {
		return named, nil
	}

	ruleText := strings.TrimPrefix(strings.ToUpper(trimmed), "RRULE:")
	if !strings.Contains(ruleText, "BYDAY=") {
		ruleText = "FREQ=WEEKLY;BYDAY=" + strings.ReplaceAll(ruleText, " ", "")
	}

	option, err := rrule.StrToROption(ruleText)
	if err != nil {
		return Never, fmt.Errorf("invalid day set %q: %w", expr, err)
	}
	if len(option.Byweekday) == 0 {
		return Never, fmt.Errorf("invalid day set %q: no days given", expr)
	}

	var set DaySet
	for _, weekday := range option.Byweekday {
		set |= 1 << FromRRuleWeekday(weekday)
	}
	return set, nil
}

// FromRRuleWeekday converts an rrule weekday (Monday = 0) to a Day (Sunday = 0)
func FromRRuleWeekday(weekday rrule.Weekday) Day {
	return Day((weekday.Day() + 1) % DaysPerWeek)
}

// RRuleWeekdays converts the set into rrule weekdays, Monday first
func (s DaySet) RRuleWeekdays() []rrule.Weekday {
	all := []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}
	weekdays := make([]rrule.Weekday, 0, DaysPerWeek)
	for _, weekday := range all {
		if s.Has(FromRRuleWeekday(weekday)) {
			weekdays = append(weekdays, weekday)
		}
	}
	return weekdays
}
