// Package catalog reads and writes section catalogs and converts the registrar's raw feed.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// File is the on-disk form of a catalog
type File struct {
	Term     string           `json:"term,omitempty"`
	Sections []*model.Section `json:"sections"`
}

// Read decodes a catalog file and builds the section schedules
func Read(r io.Reader) (model.Catalog, string, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, "", fmt.Errorf("failed to decode catalog: %w", err)
	}

	catalog, err := model.NewCatalog(file.Sections)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build catalog: %w", err)
	}
	return catalog, file.Term, nil
}

// Load reads a catalog file from disk
func Load(path string) (model.Catalog, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Write encodes the catalog with sections in ascending key order
func Write(w io.Writer, catalog model.Catalog, term string) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(File{Term: term, Sections: catalog.Sorted()}); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return nil
}

// Save writes the catalog to disk, replacing any existing file
func Save(path string, catalog model.Catalog, term string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog %s: %w", path, err)
	}
	defer f.Close()

	return Write(f, catalog, term)
}
