package commands

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/internal/config"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/services"
	"github.com/jakechorley/class-scheduler/pkg/core/solver"
)

// SolveCmd creates the solve command
func SolveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve [include...]",
		Short: "Generate ranked schedules for the profile (or the given includes)",
		Long: `Generate every conflict-free schedule for the profile's includes, rank them by the
profile's priorities and store the run. Includes given as arguments replace the profile's.

An include is a CRN ("12345"), a course ("MAC2311"), a course and schedule type
("CHM2045:Lab") or "*" for every section.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			show, _ := cmd.Flags().GetInt("show")
			limit, _ := cmd.Flags().GetInt("limit")
			workers, _ := cmd.Flags().GetInt("workers")
			nodeBudget, _ := cmd.Flags().GetUint64("node-budget")

			request, err := services.RequestFromConfig(app.Cfg)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				request.Includes = args
			}
			if cmd.Flags().Changed("limit") {
				request.Search.Limit = &limit
			}
			if cmd.Flags().Changed("workers") {
				request.Search.Workers = workers
			}
			if cmd.Flags().Changed("node-budget") {
				request.Search.NodeBudget = nodeBudget
			}
			request.DryRun = dryRun

			app.Logger.Debug("solve command",
				zap.Strings("includes", request.Includes),
				zap.Bool("dry_run", dryRun))

			sections, err := app.Catalog()
			if err != nil {
				return err
			}

			generated, err := services.GenerateSchedules(app.Ctx, app.Database, sections, request, app.Logger, nil)
			if err != nil {
				return err
			}

			printSolveResult(generated, show)
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Solve without storing the run")
	cmd.Flags().Int("show", 5, "Number of ranked schedules to print")
	cmd.Flags().Int("limit", config.DefaultScheduleLimit, "Keep only the best N schedules, 0 keeps all (overrides the profile)")
	cmd.Flags().Int("workers", 0, "Parallel search workers (overrides the profile)")
	cmd.Flags().Uint64("node-budget", 0, "Stop the search after N nodes (overrides the profile)")

	return cmd
}

func printSolveResult(generated *services.GenerateResult, show int) {
	result := generated.Result

	fmt.Printf("\n%sFound %d schedules%s", colorBold, result.Found, colorReset)
	if generated.Truncated {
		fmt.Printf(" %s(search stopped at the node budget)%s", colorYellow, colorReset)
	}
	fmt.Printf("  %snodes=%d pruned=%d space=%d%s\n", colorDim, result.Stats.Nodes, result.Stats.Pruned, result.Stats.SearchSpace, colorReset)

	if generated.Run != nil {
		fmt.Printf("Run ID: %s\n", generated.Run.ID)
	}

	if len(result.EmptyBuckets) > 0 {
		fmt.Printf("\n%sNo candidates left for:%s\n", colorYellow, colorReset)
		for _, name := range result.EmptyBuckets {
			fmt.Printf("  - %s\n", name)
		}
	}

	if show > len(result.Schedules) || show < 0 {
		show = len(result.Schedules)
	}
	for i, schedule := range result.Schedules[:show] {
		printRankedSchedule(result, i+1, schedule)
	}
	if len(result.Schedules) > show {
		fmt.Printf("\n%s... %d more (use --show)%s\n", colorDim, len(result.Schedules)-show, colorReset)
	}
	fmt.Println()
}

func printRankedSchedule(result *solver.Result, rank int, schedule solver.RankedSchedule) {
	fmt.Printf("\n%s#%d%s  score %s%.2f%s  credits %d\n", colorBold, rank, colorReset, colorGreen, schedule.Score, colorReset, schedule.Credits)

	alternates := result.Alternates(schedule)
	for i, section := range schedule.Sections {
		line := "  " + formatSection(section)
		if len(alternates[i]) > 0 {
			keys := lo.Map(alternates[i], func(alt *model.Section, _ int) model.SectionKey { return alt.Key })
			line += fmt.Sprintf("  %salso %s%s", colorDim, formatKeys(keys), colorReset)
		}
		fmt.Println(line)
	}

	fmt.Printf("  %s", colorDim)
	for _, factor := range schedule.Breakdown.Labeled() {
		fmt.Printf("%s %.1f  ", factor.Label, factor.Value)
	}
	fmt.Printf("%s\n", colorReset)
}
