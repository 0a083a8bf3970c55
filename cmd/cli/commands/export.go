package commands

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/pkg/core/services"
	"github.com/jakechorley/class-scheduler/pkg/exporter"
)

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <run_id> [rank]",
		Short: "Export a stored schedule as an iCalendar file (rank defaults to 1)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			termStart, _ := cmd.Flags().GetString("term-start")
			termEnd, _ := cmd.Flags().GetString("term-end")

			rank := 1
			if len(args) > 1 {
				parsed, err := strconv.Atoi(args[1])
				if err != nil || parsed < 1 {
					return fmt.Errorf("rank must be a positive integer, got: %s", args[1])
				}
				rank = parsed
			}

			options, err := exportOptions(app, termStart, termEnd)
			if err != nil {
				return err
			}

			app.Logger.Debug("export command",
				zap.String("run_id", args[0]),
				zap.Int("rank", rank),
				zap.String("out", out))

			sections, err := app.Catalog()
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			events, err := services.ExportRunSchedule(app.Ctx, app.Database, sections, app.Logger, args[0], rank, &buf, options)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			fmt.Printf("\n%s✓ Wrote %d events to %s%s\n\n", colorGreen, events, out, colorReset)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "schedule.ics", "Output file")
	cmd.Flags().String("term-start", "", "First day of term (YYYY-MM-DD) for meetings without dates")
	cmd.Flags().String("term-end", "", "Last day of term (YYYY-MM-DD) for meetings without dates")

	return cmd
}

func exportOptions(app *AppContext, termStart, termEnd string) (exporter.Options, error) {
	loc, err := app.Cfg.Location()
	if err != nil {
		return exporter.Options{}, err
	}

	options := exporter.Options{Location: loc, Name: app.Cfg.Term}
	if termStart != "" {
		if options.TermStart, err = time.ParseInLocation(time.DateOnly, termStart, loc); err != nil {
			return exporter.Options{}, fmt.Errorf("invalid --term-start: %w", err)
		}
	}
	if termEnd != "" {
		if options.TermEnd, err = time.ParseInLocation(time.DateOnly, termEnd, loc); err != nil {
			return exporter.Options{}, fmt.Errorf("invalid --term-end: %w", err)
		}
	}
	return options, nil
}
