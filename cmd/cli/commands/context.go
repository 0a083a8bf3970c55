package commands

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/internal/config"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/services"
	"github.com/jakechorley/class-scheduler/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context

	catalogMu sync.Mutex
	catalog   model.Catalog
}

// Catalog returns the profile's catalog, loading it on first use
func (app *AppContext) Catalog() (model.Catalog, error) {
	app.catalogMu.Lock()
	defer app.catalogMu.Unlock()

	if app.catalog != nil {
		return app.catalog, nil
	}
	sections, err := services.LoadCatalog(app.Ctx, app.Database, app.Cfg, app.Logger)
	if err != nil {
		return nil, err
	}
	app.catalog = sections
	return sections, nil
}

// ResetCatalog drops the cached catalog so the next command reloads it
func (app *AppContext) ResetCatalog() {
	app.catalogMu.Lock()
	defer app.catalogMu.Unlock()
	app.catalog = nil
}
