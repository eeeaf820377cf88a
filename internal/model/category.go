package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedCategory is returned for any category name outside the known set.
var ErrUnsupportedCategory = errors.New("unsupported category")

// Category identifies a product family in the distributor exports.
type Category string

const (
	CategoryPanels            Category = "panels"
	CategoryInverters         Category = "inverters"
	CategoryBatteries         Category = "batteries"
	CategoryChargeControllers Category = "charge_controllers"
	CategoryStructures        Category = "structures"
	CategoryKits              Category = "kits"
)

// Categories lists every supported category in processing order. Kits come
// last because their components are matched against the other categories.
var Categories = []Category{
	CategoryPanels,
	CategoryInverters,
	CategoryBatteries,
	CategoryChargeControllers,
	CategoryStructures,
	CategoryKits,
}

var categoryAliases = map[string]Category{
	"panels":             CategoryPanels,
	"panel":              CategoryPanels,
	"paineis":            CategoryPanels,
	"modulos":            CategoryPanels,
	"inverters":          CategoryInverters,
	"inverter":           CategoryInverters,
	"inversores":         CategoryInverters,
	"batteries":          CategoryBatteries,
	"battery":            CategoryBatteries,
	"baterias":           CategoryBatteries,
	"charge_controllers": CategoryChargeControllers,
	"controllers":        CategoryChargeControllers,
	"controladores":      CategoryChargeControllers,
	"structures":         CategoryStructures,
	"estruturas":         CategoryStructures,
	"kits":               CategoryKits,
	"kit":                CategoryKits,
}

// ParseCategory resolves a category name (case-insensitive, English or
// Portuguese plural) into a Category.
func ParseCategory(name string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCategory, name)
}

// Prefix returns the three-letter code used inside generated SKUs.
func (c Category) Prefix() string {
	switch c {
	case CategoryPanels:
		return "PAN"
	case CategoryInverters:
		return "INV"
	case CategoryBatteries:
		return "BAT"
	case CategoryChargeControllers:
		return "CHA"
	case CategoryStructures:
		return "STR"
	case CategoryKits:
		return "KIT"
	}
	s := strings.ToUpper(string(c))
	if len(s) > 3 {
		return s[:3]
	}
	return s
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
