package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/db"
)

// InsertRun inserts a solve run and its ranked schedules in one transaction
func (d *DB) InsertRun(ctx context.Context, run *db.SolveRun, schedules []db.RunSchedule) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	var termID *string
	if run.TermID != "" {
		termID = &run.TermID
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO solve_run (id, term_id, includes, constraints, priorities, found)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, run.ID, termID, run.Includes, run.Constraints, run.Priorities, int64(run.Found)).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert solve run: %w", err)
	}
	run.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	batch := &pgx.Batch{}
	for _, schedule := range schedules {
		batch.Queue(`
			INSERT INTO run_schedule (run_id, rank, section_keys, score, breakdown, credits)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, run.ID, schedule.Rank, keysToInt64(schedule.SectionKeys), schedule.Score, schedule.Breakdown, int64(schedule.Credits))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert run schedules: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun retrieves a solve run and its schedules ordered by rank
func (d *DB) GetRun(ctx context.Context, id string) (*db.SolveRun, []db.RunSchedule, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, term_id, includes, constraints, priorities, found, created_at
		FROM solve_run
		WHERE id = $1
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("run %s: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := d.pool.Query(ctx, `
		SELECT rank, section_keys, score, breakdown, credits
		FROM run_schedule
		WHERE run_id = $1
		ORDER BY rank
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query run schedules: %w", err)
	}
	defer rows.Close()

	var schedules []db.RunSchedule
	for rows.Next() {
		schedule := db.RunSchedule{RunID: id}
		var keys []int64
		var credits int64
		if err := rows.Scan(&schedule.Rank, &keys, &schedule.Score, &schedule.Breakdown, &credits); err != nil {
			return nil, nil, fmt.Errorf("failed to scan run schedule: %w", err)
		}
		schedule.SectionKeys = keysFromInt64(keys)
		schedule.Credits = uint64(credits)
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating run schedules: %w", err)
	}

	return run, schedules, nil
}

// GetRuns retrieves all solve runs, newest first
func (d *DB) GetRuns(ctx context.Context) ([]db.SolveRun, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, term_id, includes, constraints, priorities, found, created_at
		FROM solve_run
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query solve runs: %w", err)
	}
	defer rows.Close()

	var runs []db.SolveRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating solve runs: %w", err)
	}

	return runs, nil
}

func scanRun(row pgx.Row) (*db.SolveRun, error) {
	var run db.SolveRun
	var termID *string
	var found int64
	var createdAt time.Time
	err := row.Scan(&run.ID, &termID, &run.Includes, &run.Constraints, &run.Priorities, &found, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan solve run: %w", err)
	}
	if termID != nil {
		run.TermID = *termID
	}
	run.Found = uint64(found)
	run.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return &run, nil
}

func keysToInt64(keys []model.SectionKey) []int64 {
	converted := make([]int64, len(keys))
	for i, key := range keys {
		converted[i] = int64(key)
	}
	return converted
}

func keysFromInt64(keys []int64) []model.SectionKey {
	converted := make([]model.SectionKey, len(keys))
	for i, key := range keys {
		converted[i] = model.SectionKey(key)
	}
	return converted
}
