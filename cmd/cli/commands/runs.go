package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/pkg/core/services"
)

// RunsCmd creates the runs command
func RunsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "runs [count]",
		Short: "List recent solve runs with their best schedule (count defaults to 10)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 10
			if len(args) > 0 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed < 1 {
					return fmt.Errorf("count must be a positive integer, got: %s", args[0])
				}
				count = parsed
			}

			app.Logger.Debug("runs command", zap.Int("count", count))

			summaries, err := services.ViewRunHistory(app.Ctx, app.Database, app.Logger, count)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("\nNo solve runs stored yet.")
				return nil
			}

			fmt.Printf("\n%-36s  %-20s  %7s  %5s  %s\n", "Run", "Created", "Found", "Kept", "Best")
			for _, summary := range summaries {
				best := colorDim + "none" + colorReset
				if summary.Best != nil {
					best = fmt.Sprintf("%.2f [%s]", summary.Best.Score, formatKeys(summary.Best.SectionKeys))
				}
				fmt.Printf("%-36s  %-20s  %7d  %5d  %s\n",
					summary.Run.ID,
					summary.Run.CreatedAt,
					summary.Run.Found,
					summary.Kept,
					best)
			}
			fmt.Println()
			return nil
		},
	}
}
