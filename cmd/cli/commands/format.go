package commands

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
)

// formatMeeting renders a meeting as "MWF 09:00-09:50 GS 101"
func formatMeeting(meeting model.Meeting) string {
	if !meeting.IsTimed() {
		return "TBA"
	}

	parts := []string{
		dayLetters(meeting.Days),
		fmt.Sprintf("%s-%s", meeting.Start, meeting.End),
	}
	if place := strings.TrimSpace(meeting.BuildingCode + " " + meeting.Room); place != "" {
		parts = append(parts, place)
	}
	return strings.Join(parts, " ")
}

var dayLetter = [model.DaysPerWeek]string{"U", "M", "T", "W", "R", "F", "S"}

// dayLetters renders a day set in registrar shorthand, e.g. "TR"
func dayLetters(days model.DaySet) string {
	return strings.Join(lo.Map(days.Days(), func(day model.Day, _ int) string {
		return dayLetter[day]
	}), "")
}

// formatSection renders one line per section: key, course, type and meetings
func formatSection(section *model.Section) string {
	meetings := lo.Map(section.Meetings, func(meeting model.Meeting, _ int) string {
		return formatMeeting(meeting)
	})
	return fmt.Sprintf("%-6d %-8s %-10s %s", section.Key, section.Subject, section.ScheduleType, strings.Join(meetings, "; "))
}

// formatMinutes renders a duration in minutes as "2h05m"
func formatMinutes(minutes uint16) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}

// formatClock renders minutes from midnight, with 1440 as "end of day"
func formatClock(minute uint16) string {
	if minute >= 24*60 {
		return "end of day"
	}
	return model.NewTime(uint8(minute/60), uint8(minute%60)).String()
}

func formatKeys(keys []model.SectionKey) string {
	return strings.Join(lo.Map(keys, func(key model.SectionKey, _ int) string {
		return fmt.Sprintf("%d", key)
	}), ", ")
}
