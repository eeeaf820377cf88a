package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/model"
)

// Variant carries the numeric discriminators appended to generated SKUs.
type Variant struct {
	VoltageV float64
	PowerW   float64
}

// VariantFromSpecs picks the discriminators that tell apart products of the
// same model line: power for panels and inverters, voltage for storage and
// controllers.
func VariantFromSpecs(category model.Category, specs model.SpecSet) Variant {
	var v Variant
	switch category {
	case model.CategoryPanels:
		v.PowerW, _ = specs.Get(model.SpecPowerW)
	case model.CategoryInverters:
		if kw, ok := specs.Get(model.SpecPowerKW); ok {
			v.PowerW = kw * 1000
		}
	case model.CategoryBatteries, model.CategoryChargeControllers:
		v.VoltageV, _ = specs.Get(model.SpecVoltageV)
	}
	return v
}

// GenerateSku builds {manufacturer}-{prefix}-{model}[-{V}V][-{W}W]. When the
// manufacturer or model is empty the missing part is replaced by a content
// hash. The result depends only on the arguments.
func GenerateSku(manufacturer, modelNumber string, category model.Category, variant Variant) string {
	return generateSku(manufacturer, modelNumber, category, variant, 0)
}

func generateSku(manufacturer, modelNumber string, category model.Category, variant Variant, discriminator int) string {
	mfr := matching.Slug(manufacturer)
	mdl := matching.Slug(modelNumber)

	if mfr == "" {
		mfr = contentHash("manufacturer", manufacturer, modelNumber, category, variant, discriminator)
	}

	parts := []string{mfr, category.Prefix()}
	if mdl != "" {
		parts = append(parts, mdl)
	} else {
		parts = append(parts, contentHash("model", manufacturer, modelNumber, category, variant, discriminator))
	}
	if variant.VoltageV > 0 {
		parts = append(parts, fmt.Sprintf("%dV", int(math.Round(variant.VoltageV))))
	}
	if variant.PowerW > 0 {
		parts = append(parts, fmt.Sprintf("%dW", int(math.Round(variant.PowerW))))
	}
	if mdl != "" && discriminator > 0 {
		parts = append(parts, contentHash("variant", manufacturer, modelNumber, category, variant, discriminator))
	}
	return strings.ToUpper(strings.Join(parts, "-"))
}

// contentHash returns 8 hex characters of sha256 over the SKU inputs. part
// keeps the hashes standing in for different SKU segments apart.
func contentHash(part, manufacturer, modelNumber string, category model.Category, variant Variant, discriminator int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%s|%g|%g|%d", part,
		strings.ToUpper(strings.TrimSpace(manufacturer)),
		strings.ToUpper(strings.TrimSpace(modelNumber)),
		category, variant.VoltageV, variant.PowerW, discriminator))
	return hex.EncodeToString(sum[:4])
}

// SkuAllocator hands out SKU identifiers that are unique within one run.
// Collisions are resolved by retrying with an increasing discriminator, so
// the same input sequence always yields the same identifiers.
type SkuAllocator struct {
	used map[string]struct{}
}

// NewSkuAllocator creates an empty allocator
func NewSkuAllocator() *SkuAllocator {
	return &SkuAllocator{used: make(map[string]struct{})}
}

// Reserve claims id and reports whether it was free.
func (a *SkuAllocator) Reserve(id string) bool {
	if _, taken := a.used[id]; taken {
		return false
	}
	a.used[id] = struct{}{}
	return true
}

// Taken reports whether id has been handed out.
func (a *SkuAllocator) Taken(id string) bool {
	_, taken := a.used[id]
	return taken
}

// Allocate generates and claims a fresh SKU.
func (a *SkuAllocator) Allocate(manufacturer, modelNumber string, category model.Category, variant Variant) string {
	for d := 0; ; d++ {
		id := generateSku(manufacturer, modelNumber, category, variant, d)
		if a.Reserve(id) {
			return id
		}
	}
}
