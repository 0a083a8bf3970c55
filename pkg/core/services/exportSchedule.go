package services

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/solver"
	"github.com/jakechorley/class-scheduler/pkg/db"
	"github.com/jakechorley/class-scheduler/pkg/exporter"
)

// RunScheduleStore defines the database operations needed to read back a stored schedule
type RunScheduleStore interface {
	GetRun(ctx context.Context, id string) (*db.SolveRun, []db.RunSchedule, error)
}

// ExportRunSchedule writes the schedule at the given rank (1 is best) of a stored run as iCalendar
func ExportRunSchedule(
	ctx context.Context,
	store RunScheduleStore,
	sections model.Catalog,
	logger *zap.Logger,
	runID string,
	rank int,
	w io.Writer,
	options exporter.Options,
) (int, error) {
	logger.Debug("Fetching solve run", zap.String("run_id", runID), zap.Int("rank", rank))

	_, schedules, err := store.GetRun(ctx, runID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch solve run: %w", err)
	}

	schedule, ok := lo.Find(schedules, func(s db.RunSchedule) bool { return s.Rank == rank })
	if !ok {
		return 0, fmt.Errorf("run %s has no schedule at rank %d (%d stored)", runID, rank, len(schedules))
	}

	return ExportSections(sections, logger, schedule.SectionKeys, w, options)
}

// ExportSections writes the sections with the given keys as iCalendar
func ExportSections(sections model.Catalog, logger *zap.Logger, keys []model.SectionKey, w io.Writer, options exporter.Options) (int, error) {
	chosen, err := solver.Resolve(sections, keys)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve sections: %w", err)
	}

	events, err := exporter.GenerateICS(chosen, w, options)
	if err != nil {
		return 0, fmt.Errorf("failed to export calendar: %w", err)
	}

	logger.Info("Schedule exported",
		zap.Int("sections", len(chosen)),
		zap.Int("events", events))
	return events, nil
}
