package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/cmd/cli/commands"
	"github.com/jakechorley/class-scheduler/internal/config"
	"github.com/jakechorley/class-scheduler/pkg/db"
	"github.com/jakechorley/class-scheduler/pkg/postgres"
	"github.com/jakechorley/class-scheduler/pkg/utils/logging"
)

var (
	env        string
	configPath string
	verbose    bool
	app        *commands.AppContext
	closeDB    func()
)

func main() {
	app = &commands.AppContext{}

	rootCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Class scheduler - find and rank conflict-free weekly timetables",
		Long: `A CLI tool for generating every conflict-free combination of course sections,
ranking them by schedule preferences and exporting the chosen timetable.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeDB != nil {
				closeDB()
			}
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Profile path (defaults to scheduler_config.<env>.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to the console")
	_ = rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.SolveCmd(app))
	rootCmd.AddCommand(commands.ImportCmd(app))
	rootCmd.AddCommand(commands.ExportCmd(app))
	rootCmd.AddCommand(commands.RoomsCmd(app))
	rootCmd.AddCommand(commands.SubjectsCmd(app))
	rootCmd.AddCommand(commands.RunsCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and database
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Logger, _, err = logging.New(logging.Options{Env: env, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	if configPath != "" {
		app.Cfg, err = config.LoadFromPath(configPath)
	} else {
		app.Cfg, err = config.LoadWithEnv(env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("term", app.Cfg.Term))

	if app.Cfg.DatabaseURL == "" {
		app.Logger.Info("No database configured, runs are kept in memory for this process")
		app.Database = db.NewMemoryDB()
		return nil
	}

	app.Logger.Info("Connecting to database")
	pg, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	closeDB = pg.Close

	applied, err := pg.RunMigrations(app.Ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		app.Logger.Info("Applied migrations", zap.Strings("migrations", applied))
	}

	app.Database = pg
	app.Logger.Info("Database initialized successfully")
	return nil
}
