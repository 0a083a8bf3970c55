package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/rooms"
	"github.com/jakechorley/class-scheduler/pkg/core/services"
)

// RoomsCmd creates the rooms command
func RoomsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms <day> <time>",
		Short: "List rooms free at a weekday and time, e.g. rooms TU 13:30",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseWeekday(args[0])
			if err != nil {
				return err
			}
			at, err := model.ParseTime(args[1])
			if err != nil {
				return err
			}

			app.Logger.Debug("rooms command", zap.Stringer("day", day), zap.Stringer("at", at))

			sections, err := app.Catalog()
			if err != nil {
				return err
			}

			grouped := services.FreeRooms(sections, app.Logger, day, at)
			if len(grouped) == 0 {
				fmt.Printf("\nNo rooms free on %s at %s\n\n", day, at)
				return nil
			}

			fmt.Printf("\nRooms free on %s at %s\n", day, at)
			for _, campus := range rooms.Campuses(grouped) {
				fmt.Printf("\n%s%s%s\n", colorBold, campus, colorReset)
				for _, free := range grouped[campus] {
					fmt.Printf("  %-6s %-6s until %-10s %s(%s)%s\n",
						free.Room.Building,
						free.Room.Name,
						formatClock(free.Until),
						colorDim, formatMinutes(free.Remaining), colorReset)
				}
			}
			fmt.Println()
			return nil
		},
	}
}

// parseWeekday accepts any single-day expression ParseDaySet understands ("TU", "tu")
func parseWeekday(text string) (model.Day, error) {
	days, err := model.ParseDaySet(text)
	if err != nil {
		return 0, err
	}
	if len(days.Days()) != 1 {
		return 0, fmt.Errorf("expected exactly one weekday, got %q", text)
	}
	return days.Days()[0], nil
}

// SubjectsCmd creates the subjects command
func SubjectsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects [limit]",
		Short: "Show the subjects with the most fully timed sections (limit defaults to 10)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := 10
			if len(args) > 0 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed < 0 {
					return fmt.Errorf("limit must be a non-negative integer, got: %s", args[0])
				}
				limit = parsed
			}

			sections, err := app.Catalog()
			if err != nil {
				return err
			}

			counts := services.TopSubjects(sections, app.Logger, limit)
			fmt.Printf("\n%-10s %s\n", "Subject", "Timed sections")
			for _, count := range counts {
				fmt.Printf("%-10s %d\n", count.Subject, count.Count)
			}
			fmt.Println()
			return nil
		},
	}
}
