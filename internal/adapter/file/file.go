// Package file reads the area table and the feature collection from disk
// and writes the merged collection back.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/district-areas-etl/internal/domain"
	"github.com/google/renameio/v2"
)

// AreaFile loads the tab-separated area table from a path.
// It implements pipeline.AreaSource.
type AreaFile struct {
	path   string
	logger *slog.Logger
}

// NewAreaFile creates an AreaFile for path.
func NewAreaFile(path string, logger *slog.Logger) *AreaFile {
	return &AreaFile{path: path, logger: logger}
}

// LoadAreas parses the whole table.
func (a *AreaFile) LoadAreas(ctx context.Context) (domain.AreaTable, domain.LoadStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.LoadStats{}, err
	}
	f, err := os.Open(a.path)
	if err != nil {
		return nil, domain.LoadStats{}, fmt.Errorf("open area table: %w", err)
	}
	defer f.Close()

	table, stats, err := domain.ParseAreaTable(f)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", a.path, err)
	}
	a.logger.Debug("area table loaded",
		"path", a.path,
		"rows", stats.Rows,
		"districts", len(table),
		"skipped_short", stats.SkippedShort,
		"skipped_area", stats.SkippedArea,
		"duplicates", stats.Duplicates,
	)
	return table, stats, nil
}

// DocumentFile reads the feature collection from one path and writes it to
// another, which may be the same.
// It implements pipeline.DocumentStore.
type DocumentFile struct {
	inPath  string
	outPath string
	logger  *slog.Logger
}

// NewDocumentFile creates a DocumentFile. An empty outPath overwrites inPath.
func NewDocumentFile(inPath, outPath string, logger *slog.Logger) *DocumentFile {
	if outPath == "" {
		outPath = inPath
	}
	return &DocumentFile{inPath: inPath, outPath: outPath, logger: logger}
}

// ReadDocument loads and parses the input file.
func (d *DocumentFile) ReadDocument(ctx context.Context) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.inPath)
	if err != nil {
		return nil, fmt.Errorf("read feature collection: %w", err)
	}
	doc, err := domain.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.inPath, err)
	}
	return doc, nil
}

// WriteDocument encodes doc and atomically replaces the output file. A
// file that already exists keeps its permissions; a new one is created 0644.
func (d *DocumentFile) WriteDocument(ctx context.Context, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(d.outPath, data, 0o644, renameio.WithExistingPermissions()); err != nil {
		return fmt.Errorf("write feature collection: %w", err)
	}
	d.logger.Debug("feature collection written", "path", d.outPath, "bytes", len(data))
	return nil
}
