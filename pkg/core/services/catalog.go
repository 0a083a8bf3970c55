package services

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jakechorley/class-scheduler/internal/config"
	"github.com/jakechorley/class-scheduler/pkg/catalog"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/db"
)

// ImportResult describes a stored catalog import
type ImportResult struct {
	Term     db.Term
	Sections int
	Timed    int
}

// ImportCatalog converts a raw registrar feed and stores it under the term name.
// An empty termName takes the term from the feed.
func ImportCatalog(ctx context.Context, store db.CatalogStore, logger *zap.Logger, feed io.Reader, termName string) (*ImportResult, error) {
	logger.Debug("Converting registrar feed")
	sections, feedTerm, err := catalog.ConvertBanner(feed)
	if err != nil {
		return nil, fmt.Errorf("failed to convert feed: %w", err)
	}

	if termName == "" {
		termName = feedTerm
	}
	if termName == "" {
		return nil, fmt.Errorf("term name is required when the feed has no term")
	}

	timed := 0
	for _, section := range sections {
		if section.IsFullyTimed() {
			timed++
		}
	}
	logger.Debug("Converted sections",
		zap.Int("sections", len(sections)),
		zap.Int("fully_timed", timed))

	term := &db.Term{Name: termName}
	if err := store.SaveCatalog(ctx, term, sections); err != nil {
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}

	logger.Info("Catalog imported",
		zap.String("term", term.Name),
		zap.String("term_id", term.ID),
		zap.Int("sections", term.SectionCount))

	return &ImportResult{
		Term:     *term,
		Sections: len(sections),
		Timed:    timed,
	}, nil
}

// LoadCatalog loads the profile's catalog from its file when one is configured,
// otherwise from the store under the profile's term
func LoadCatalog(ctx context.Context, store db.CatalogStore, cfg *config.Config, logger *zap.Logger) (model.Catalog, error) {
	if cfg.CatalogPath != "" {
		logger.Debug("Loading catalog file", zap.String("path", cfg.CatalogPath))
		sections, term, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		if term != "" && term != cfg.Term {
			logger.Warn("Catalog file term differs from profile term",
				zap.String("file_term", term),
				zap.String("profile_term", cfg.Term))
		}
		logger.Info("Catalog loaded", zap.String("path", cfg.CatalogPath), zap.Int("sections", len(sections)))
		return sections, nil
	}

	logger.Debug("Loading stored catalog", zap.String("term", cfg.Term))
	sections, err := store.LoadCatalog(ctx, cfg.Term)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Catalog loaded", zap.String("term", cfg.Term), zap.Int("sections", len(sections)))
	return sections, nil
}
