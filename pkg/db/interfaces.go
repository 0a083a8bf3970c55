package db

import (
	"context"
	"errors"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// CatalogStore defines the interface for catalog database operations
type CatalogStore interface {
	// SaveCatalog stores the sections under the term, replacing any sections already stored for it
	SaveCatalog(ctx context.Context, term *Term, sections []*model.Section) error
	LoadCatalog(ctx context.Context, termName string) (model.Catalog, error)
	GetTerms(ctx context.Context) ([]Term, error)
}

// RunStore defines the interface for solve run database operations
type RunStore interface {
	InsertRun(ctx context.Context, run *SolveRun, schedules []RunSchedule) error
	GetRun(ctx context.Context, id string) (*SolveRun, []RunSchedule, error)
	GetRuns(ctx context.Context) ([]SolveRun, error)
}

// Database defines the interface for all database operations.
// Both the in-memory db.MemoryDB and postgres.DB implement this interface.
type Database interface {
	CatalogStore
	RunStore
}
