package model

import (
	"sort"
	"sync"
)

// RegistryEntry maps one distributor product to its canonical SKU.
type RegistryEntry struct {
	Category   Category `json:"category"`
	OriginalID string   `json:"original_id"`
	SkuID      string   `json:"sku"`
}

// SkuRegistry remembers {category, original_id} -> canonical SKU across runs
// so that re-running on the same input keeps SKU identities stable.
type SkuRegistry struct {
	mu      sync.RWMutex
	entries map[registryKey]string
}

type registryKey struct {
	category Category
	id       string
}

// NewSkuRegistry builds a registry from persisted entries.
func NewSkuRegistry(entries []RegistryEntry) *SkuRegistry {
	r := &SkuRegistry{entries: make(map[registryKey]string, len(entries))}
	for _, e := range entries {
		r.entries[registryKey{e.Category, e.OriginalID}] = e.SkuID
	}
	return r
}

// Lookup returns the SKU previously assigned to a product.
func (r *SkuRegistry) Lookup(category Category, originalID string) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sku, ok := r.entries[registryKey{category, originalID}]
	return sku, ok
}

// Assign records the SKU for a product, replacing any previous value.
func (r *SkuRegistry) Assign(category Category, originalID, skuID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[registryKey{category, originalID}] = skuID
}

// Len returns the number of entries.
func (r *SkuRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entries returns all entries sorted by category and original id.
func (r *SkuRegistry) Entries() []RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RegistryEntry, 0, len(r.entries))
	for k, sku := range r.entries {
		out = append(out, RegistryEntry{Category: k.category, OriginalID: k.id, SkuID: sku})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].OriginalID < out[j].OriginalID
	})
	return out
}
