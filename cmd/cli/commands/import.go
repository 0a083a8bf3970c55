package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/pkg/catalog"
	"github.com/jakechorley/class-scheduler/pkg/core/services"
)

// ImportCmd creates the import command
func ImportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <feed.json>",
		Short: "Import a registrar class search feed as a term catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term, _ := cmd.Flags().GetString("term")
			out, _ := cmd.Flags().GetString("out")

			app.Logger.Debug("import command", zap.String("feed", args[0]), zap.String("term", term))

			feed, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open feed: %w", err)
			}
			defer feed.Close()

			result, err := services.ImportCatalog(app.Ctx, app.Database, app.Logger, feed, term)
			if err != nil {
				return err
			}
			if result.Term.Name == app.Cfg.Term {
				app.ResetCatalog()
			}

			fmt.Printf("\n%s✓ Catalog imported%s\n\n", colorGreen, colorReset)
			fmt.Printf("Term:        %s (%s)\n", result.Term.Name, result.Term.ID)
			fmt.Printf("Sections:    %d\n", result.Sections)
			fmt.Printf("Fully timed: %d\n", result.Timed)

			if out != "" {
				sections, err := app.Database.LoadCatalog(app.Ctx, result.Term.Name)
				if err != nil {
					return fmt.Errorf("failed to reload catalog: %w", err)
				}
				if err := catalog.Save(out, sections, result.Term.Name); err != nil {
					return err
				}
				fmt.Printf("Written to:  %s\n", out)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("term", "", "Term name (defaults to the feed's term)")
	cmd.Flags().String("out", "", "Also write the typed catalog to this file")

	return cmd
}
