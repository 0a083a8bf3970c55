package db

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// MemoryDB provides database operations held in process memory.
// It backs the CLI when no database is configured.
type MemoryDB struct {
	mu        sync.RWMutex
	terms     map[string]Term
	catalogs  map[string]model.Catalog
	runs      map[string]SolveRun
	schedules map[string][]RunSchedule
}

// NewMemoryDB creates an empty in-memory database
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		terms:     make(map[string]Term),
		catalogs:  make(map[string]model.Catalog),
		runs:      make(map[string]SolveRun),
		schedules: make(map[string][]RunSchedule),
	}
}

// SaveCatalog stores the sections under the term name
func (m *MemoryDB) SaveCatalog(ctx context.Context, term *Term, sections []*model.Section) error {
	catalog, err := model.NewCatalog(sections)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.terms[term.Name]; ok {
		term.ID = existing.ID
	}
	if term.ID == "" {
		term.ID = uuid.New().String()
	}
	term.ImportedAt = time.Now().UTC().Format(time.RFC3339)
	term.SectionCount = len(catalog)

	m.terms[term.Name] = *term
	m.catalogs[term.Name] = catalog
	return nil
}

// LoadCatalog returns the catalog stored under the term name
func (m *MemoryDB) LoadCatalog(ctx context.Context, termName string) (model.Catalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	catalog, ok := m.catalogs[termName]
	if !ok {
		return nil, fmt.Errorf("term %q: %w", termName, ErrNotFound)
	}
	return catalog, nil
}

// GetTerms returns all terms ordered by name
func (m *MemoryDB) GetTerms(ctx context.Context) ([]Term, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	terms := make([]Term, 0, len(m.terms))
	for _, term := range m.terms {
		terms = append(terms, term)
	}
	slices.SortFunc(terms, func(a, b Term) int {
		return strings.Compare(a.Name, b.Name)
	})
	return terms, nil
}

// InsertRun stores a solve run and its ranked schedules
func (m *MemoryDB) InsertRun(ctx context.Context, run *SolveRun, schedules []RunSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if _, exists := m.runs[run.ID]; exists {
		return fmt.Errorf("failed to insert run: duplicate id %s", run.ID)
	}
	run.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	stored := make([]RunSchedule, len(schedules))
	for i, schedule := range schedules {
		schedule.RunID = run.ID
		stored[i] = schedule
	}

	m.runs[run.ID] = *run
	m.schedules[run.ID] = stored
	return nil
}

// GetRun returns a solve run and its schedules ordered by rank
func (m *MemoryDB) GetRun(ctx context.Context, id string) (*SolveRun, []RunSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}

	schedules := slices.Clone(m.schedules[id])
	slices.SortFunc(schedules, func(a, b RunSchedule) int {
		return a.Rank - b.Rank
	})
	return &run, schedules, nil
}

// GetRuns returns all solve runs, newest first
func (m *MemoryDB) GetRuns(ctx context.Context) ([]SolveRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]SolveRun, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	slices.SortFunc(runs, func(a, b SolveRun) int {
		if c := strings.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return runs, nil
}
