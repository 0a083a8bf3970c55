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

var _ db.Database = (*DB)(nil)

// SaveCatalog upserts the term by name and replaces its sections
func (d *DB) SaveCatalog(ctx context.Context, term *db.Term, sections []*model.Section) error {
	if term.ID == "" {
		term.ID = uuid.New().String()
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var importedAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO term (id, name, section_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET imported_at = NOW(), section_count = EXCLUDED.section_count
		RETURNING id, imported_at
	`, term.ID, term.Name, len(sections)).Scan(&term.ID, &importedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert term: %w", err)
	}
	term.ImportedAt = importedAt.UTC().Format(time.RFC3339)
	term.SectionCount = len(sections)

	if _, err := tx.Exec(ctx, `DELETE FROM section WHERE term_id = $1`, term.ID); err != nil {
		return fmt.Errorf("failed to clear sections: %w", err)
	}

	rows := make([][]any, len(sections))
	for i, section := range sections {
		rows[i] = []any{term.ID, int64(section.Key), section.Subject, section.Campus, section}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"section"},
		[]string{"term_id", "crn", "subject", "campus", "data"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sections: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadCatalog retrieves every section stored under the term name
func (d *DB) LoadCatalog(ctx context.Context, termName string) (model.Catalog, error) {
	var termID string
	err := d.pool.QueryRow(ctx, `SELECT id FROM term WHERE name = $1`, termName).Scan(&termID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("term %q: %w", termName, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query term: %w", err)
	}

	rows, err := d.pool.Query(ctx, `
		SELECT data
		FROM section
		WHERE term_id = $1
		ORDER BY crn
	`, termID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []*model.Section
	for rows.Next() {
		var section model.Section
		if err := rows.Scan(&section); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, &section)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sections: %w", err)
	}

	catalog, err := model.NewCatalog(sections)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return catalog, nil
}

// GetTerms retrieves all term records ordered by name
func (d *DB) GetTerms(ctx context.Context) ([]db.Term, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, imported_at, section_count
		FROM term
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query terms: %w", err)
	}
	defer rows.Close()

	var terms []db.Term
	for rows.Next() {
		var t db.Term
		var importedAt time.Time
		if err := rows.Scan(&t.ID, &t.Name, &importedAt, &t.SectionCount); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		t.ImportedAt = importedAt.UTC().Format(time.RFC3339)
		terms = append(terms, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating terms: %w", err)
	}

	return terms, nil
}
