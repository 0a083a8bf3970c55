package commands

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/pkg/api"
	"github.com/jakechorley/class-scheduler/pkg/db"
	"github.com/jakechorley/class-scheduler/pkg/metrics"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Cfg.ServerAddr()
			}

			loc, err := app.Cfg.Location()
			if err != nil {
				return err
			}

			// A missing catalog is not fatal: requests naming an imported term still work
			sections, err := app.Catalog()
			if err != nil {
				if !errors.Is(err, db.ErrNotFound) {
					return err
				}
				app.Logger.Warn("Profile term has no catalog yet", zap.String("term", app.Cfg.Term))
			}

			gin.SetMode(gin.ReleaseMode)
			server := api.NewServer(app.Database, app.Logger, api.Options{
				Term:     app.Cfg.Term,
				Catalog:  sections,
				Location: loc,
				Search:   app.Cfg.Search,
				Metrics:  metrics.New(),
			})

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides the profile's server.addr)")

	return cmd
}
