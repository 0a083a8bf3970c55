package exporter

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// ErrInvalidDate is returned when a meeting date cannot be parsed
var ErrInvalidDate = errors.New("invalid meeting date")

var dateLayouts = []string{"01/02/2006", "2006-01-02"}

const (
	utcLayout   = "20060102T150405Z"
	localLayout = "20060102T150405"
)

// Options controls how a schedule is laid out on the calendar
type Options struct {
	// Location is the campus time zone; meeting times are wall-clock times in it and events
	// carry its name as TZID. Defaults to UTC.
	Location *time.Location
	// TermStart and TermEnd bound meetings that carry no dates of their own
	TermStart time.Time
	TermEnd   time.Time
	// Name becomes the calendar's display name when set
	Name string
	// Now stamps every event. Defaults to time.Now().
	Now time.Time
}

// GenerateICS writes one weekly recurring event per timed meeting of the sections.
// Time-free meetings and meetings without a date range are skipped.
// It returns the number of events written.
func GenerateICS(sections []*model.Section, w io.Writer, options Options) (int, error) {
	loc := options.Location
	if loc == nil {
		loc = time.UTC
	}
	now := options.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ics.NewCalendarFor("class-scheduler")
	cal.SetMethod(ics.MethodPublish)
	if options.Name != "" {
		cal.SetXWRCalName(options.Name)
	}
	cal.SetXWRTimezone(loc.String())

	events := 0
	for _, section := range sections {
		for i, meeting := range section.Meetings {
			if !meeting.IsTimed() || meeting.Days.IsEmpty() {
				continue
			}

			rule, err := meetingRule(meeting, loc, options)
			if err != nil {
				return events, fmt.Errorf("section %d: %w", section.Key, err)
			}
			if rule == nil {
				continue
			}

			dtstart := rule.OrigOptions.Dtstart
			first := rule.After(dtstart, true)
			if first.IsZero() {
				continue
			}
			duration := time.Duration(meeting.End.Minutes()-meeting.Start.Minutes()) * time.Minute

			event := cal.AddEvent(fmt.Sprintf("%d-%d@class-scheduler", section.Key, i))
			event.SetDtStampTime(now)
			setWallTime(event, ics.ComponentPropertyDtStart, first, loc)
			setWallTime(event, ics.ComponentPropertyDtEnd, first.Add(duration), loc)
			event.AddRrule(rule.OrigOptions.RRuleString())
			event.SetSummary(summary(section))
			if location := meetingLocation(meeting); location != "" {
				event.SetLocation(location)
			}
			event.SetDescription(description(section))
			events++
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return events, fmt.Errorf("failed to serialize calendar: %w", err)
	}
	return events, nil
}

// meetingRule builds the weekly recurrence of a timed meeting over its date range.
// A nil rule means the meeting has no usable date range.
func meetingRule(meeting model.Meeting, loc *time.Location, options Options) (*rrule.RRule, error) {
	startDate, err := resolveDate(meeting.StartDate, options.TermStart, loc)
	if err != nil {
		return nil, err
	}
	endDate, err := resolveDate(meeting.EndDate, options.TermEnd, loc)
	if err != nil {
		return nil, err
	}
	if startDate.IsZero() || endDate.IsZero() || endDate.Before(startDate) {
		return nil, nil
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   atTime(startDate, *meeting.Start, loc),
		Until:     atTime(endDate, *meeting.End, loc),
		Byweekday: meeting.Days.RRuleWeekdays(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence: %w", err)
	}
	return rule, nil
}

// setWallTime writes t as a wall-clock time tagged with the campus zone, so the weekly rule
// expands on local weekdays across DST changes. UTC times keep the Z form.
func setWallTime(event *ics.VEvent, property ics.ComponentProperty, t time.Time, loc *time.Location) {
	if loc == time.UTC {
		event.SetProperty(property, t.UTC().Format(utcLayout))
		return
	}
	event.SetProperty(property, t.In(loc).Format(localLayout), ics.WithTZID(loc.String()))
}

func resolveDate(text string, fallback time.Time, loc *time.Location) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback, nil
	}
	for _, layout := range dateLayouts {
		if date, err := time.ParseInLocation(layout, text, loc); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
}

func atTime(date time.Time, t model.Time, loc *time.Location) time.Time {
	date = date.In(loc)
	return time.Date(date.Year(), date.Month(), date.Day(), int(t.Hour), int(t.Minute), 0, 0, loc)
}

func summary(section *model.Section) string {
	text := section.Subject
	if section.Title != "" {
		text += " " + section.Title
	}
	if section.ScheduleType != "" {
		text += fmt.Sprintf(" (%s)", section.ScheduleType)
	}
	return text
}

func meetingLocation(meeting model.Meeting) string {
	building := meeting.BuildingName
	if building == "" {
		building = meeting.BuildingCode
	}
	return strings.TrimSpace(building + " " + meeting.Room)
}

func description(section *model.Section) string {
	lines := []string{fmt.Sprintf("CRN: %d", section.Key)}
	if instructor := section.PrimaryInstructor(); instructor != "" {
		lines = append(lines, "Instructor: "+instructor)
	}
	if section.Campus != "" {
		lines = append(lines, "Campus: "+section.Campus)
	}
	lines = append(lines, fmt.Sprintf("Credits: %d", section.Credits()))
	return strings.Join(lines, "\n")
}
