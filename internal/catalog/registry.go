package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"solar-catalog-api/internal/model"
)

// registryFile is the on-disk SKU registry format
type registryFile struct {
	RunID   string                `json:"run_id,omitempty"`
	SavedAt time.Time             `json:"saved_at"`
	Entries []model.RegistryEntry `json:"entries"`
}

// RegistryStore persists the SKU registry between runs
type RegistryStore struct {
	filePath string
}

// NewRegistryStore creates a new registry store
func NewRegistryStore(filePath string) *RegistryStore {
	return &RegistryStore{filePath: filePath}
}

// Load reads the registry. A missing file yields an empty registry. Both the
// wrapped format written by Save and a bare entry array are accepted.
func (s *RegistryStore) Load() (*model.SkuRegistry, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewSkuRegistry(nil), nil
		}
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var entries []model.RegistryEntry
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal registry: %w", err)
		}
	} else {
		var file registryFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to unmarshal registry: %w", err)
		}
		entries = file.Entries
	}

	for i, e := range entries {
		category, err := model.ParseCategory(string(e.Category))
		if err != nil {
			return nil, fmt.Errorf("registry entry %d: %w", i, err)
		}
		entries[i].Category = category
	}

	return model.NewSkuRegistry(entries), nil
}

// Save writes the registry
func (s *RegistryStore) Save(registry *model.SkuRegistry, runID string) error {
	file := registryFile{
		RunID:   runID,
		SavedAt: time.Now(),
		Entries: registry.Entries(),
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}
