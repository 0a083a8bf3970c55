package services

import (
	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/pkg/catalog"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/rooms"
)

// FreeRooms lists the rooms free at the given day and time, grouped by campus
func FreeRooms(sections model.Catalog, logger *zap.Logger, day model.Day, at model.Time) map[string][]rooms.FreeRoom {
	availability := rooms.BuildAvailability(sections)
	free := availability.FreeAt(day, at.Minutes())

	logger.Debug("Computed room availability",
		zap.Int("rooms", len(availability)),
		zap.Int("free", len(free)),
		zap.Stringer("day", day),
		zap.Stringer("at", at))

	return rooms.GroupByCampus(free)
}

// TopSubjects counts fully timed sections per subject, most first
func TopSubjects(sections model.Catalog, logger *zap.Logger, limit int) []catalog.SubjectCount {
	counts := catalog.TimedSectionCounts(sections, limit)
	logger.Debug("Counted timed sections", zap.Int("subjects", len(counts)), zap.Int("limit", limit))
	return counts
}
