package db

import (
	"github.com/jakechorley/class-scheduler/pkg/core/constraints"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/scoring"
)

// Term represents an imported catalog
type Term struct {
	ID           string
	Name         string
	ImportedAt   string
	SectionCount int
}

// SolveRun represents a stored solve request and its outcome
type SolveRun struct {
	ID          string
	TermID      string
	Includes    []string
	Constraints []constraints.Spec
	Priorities  scoring.Priorities
	Found       uint64
	CreatedAt   string
}

// RunSchedule represents one ranked schedule of a solve run
type RunSchedule struct {
	RunID       string
	Rank        int
	SectionKeys []model.SectionKey
	Score       float64
	Breakdown   scoring.Breakdown
	Credits     uint64
}
