package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"solar-catalog-api/internal/model"
)

// Snapshot is the ingested input of one pipeline run.
type Snapshot struct {
	LoadedAt time.Time
	Products map[model.Category][]model.RawProduct
	Rejects  []model.IngestReject
	Files    int
}

// Total returns the number of products across categories.
func (s *Snapshot) Total() int {
	total := 0
	for _, products := range s.Products {
		total += len(products)
	}
	return total
}

// Loader reads distributor exports from disk
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new loader
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadDirectory reads every export under dir. Two layouts are accepted and
// may be mixed:
//
//	dir/<category>.json                 distributor given inside the file
//	dir/<distributor>/<category>.json   distributor taken from the folder
//
// Files and folders starting with "_" or "." are ignored. A JSON file whose
// name is not a supported category fails the whole load.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) (*Snapshot, error) {
	snapshot := &Snapshot{
		LoadedAt: time.Now(),
		Products: make(map[model.Category][]model.RawProduct),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ignored(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := l.loadDistributorDir(ctx, snapshot, path, entry.Name()); err != nil {
				return nil, err
			}
			continue
		}
		if err := l.loadFile(snapshot, path, ""); err != nil {
			return nil, err
		}
	}

	l.logger.Info("catalog input loaded",
		"dir", dir,
		"files", snapshot.Files,
		"products", snapshot.Total(),
		"rejects", len(snapshot.Rejects),
	)

	return snapshot, nil
}

func (l *Loader) loadDistributorDir(ctx context.Context, snapshot *Snapshot, dir, distributor string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read distributor directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || ignored(entry.Name()) {
			continue
		}
		if err := l.loadFile(snapshot, filepath.Join(dir, entry.Name()), distributor); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) loadFile(snapshot *Snapshot, path, distributor string) error {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, ".json") {
		return nil
	}

	category, err := model.ParseCategory(strings.TrimSuffix(name, ext))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	products, rejects, err := DecodeProducts(data, category, distributor)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	snapshot.Products[category] = append(snapshot.Products[category], products...)
	snapshot.Rejects = append(snapshot.Rejects, rejects...)
	snapshot.Files++

	l.logger.Debug("export decoded",
		"file", path,
		"category", category,
		"distributor", distributor,
		"products", len(products),
		"rejects", len(rejects),
	)
	return nil
}

func ignored(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}
