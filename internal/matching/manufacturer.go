package matching

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"solar-catalog-api/internal/model"
)

var manufacturerInvalidRegex = regexp.MustCompile(`[^A-Z0-9 \-]+`)

// legalSuffixes are trailing tokens dropped before alias lookup.
var legalSuffixes = map[string]bool{
	"INC": true, "LTD": true, "LTDA": true, "CO": true, "CORP": true,
	"SA": true, "AG": true, "GMBH": true, "LLC": true, "EIRELI": true,
}

// defaultAliases maps normalized variants to canonical manufacturer names.
var defaultAliases = map[string]string{
	"CANADIAN":            "CANADIAN SOLAR",
	"CSI":                 "CANADIAN SOLAR",
	"CSI SOLAR":           "CANADIAN SOLAR",
	"JINKO":               "JINKO SOLAR",
	"JINKOSOLAR":          "JINKO SOLAR",
	"TRINA":               "TRINA SOLAR",
	"TRINASOLAR":          "TRINA SOLAR",
	"JA":                  "JA SOLAR",
	"JASOLAR":             "JA SOLAR",
	"LONGI SOLAR":         "LONGI",
	"LONGI GREEN ENERGY":  "LONGI",
	"RISEN ENERGY":        "RISEN",
	"BYD COMPANY":         "BYD",
	"GINLONG":             "SOLIS",
	"SOLIS GINLONG":       "SOLIS",
	"GINLONG SOLIS":       "SOLIS",
	"HUAWEI TECHNOLOGIES": "HUAWEI",
	"SUNGROW POWER":       "SUNGROW",
	"GOODWE POWER":        "GOODWE",
	"SMA SOLAR":           "SMA",
	"WEG EQUIPAMENTOS":    "WEG",
	"AP SYSTEMS":          "APSYSTEMS",
	"DAH":                 "DAH SOLAR",
	"HOYMILES POWER":      "HOYMILES",
	"DEYE INVERTER":       "DEYE",
	"PYLON":               "PYLONTECH",
	"PYLON TECHNOLOGIES":  "PYLONTECH",
}

// ManufacturerInfo is static reference data about a known manufacturer.
type ManufacturerInfo struct {
	Tier    model.Tier
	Country string
}

var knownManufacturers = map[string]ManufacturerInfo{
	"CANADIAN SOLAR": {model.Tier1, "Canada"},
	"JINKO SOLAR":    {model.Tier1, "China"},
	"TRINA SOLAR":    {model.Tier1, "China"},
	"JA SOLAR":       {model.Tier1, "China"},
	"LONGI":          {model.Tier1, "China"},
	"RISEN":          {model.Tier1, "China"},
	"ASTRONERGY":     {model.Tier1, "China"},
	"BYD":            {model.Tier1, "China"},
	"DAH SOLAR":      {model.Tier2, "China"},
	"OSDA":           {model.Tier3, "China"},
	"GROWATT":        {model.Tier1, "China"},
	"SUNGROW":        {model.Tier1, "China"},
	"HUAWEI":         {model.Tier1, "China"},
	"FRONIUS":        {model.Tier1, "Austria"},
	"SMA":            {model.Tier1, "Germany"},
	"GOODWE":         {model.Tier1, "China"},
	"SOLIS":          {model.Tier1, "China"},
	"DEYE":           {model.Tier2, "China"},
	"WEG":            {model.Tier1, "Brazil"},
	"HOYMILES":       {model.Tier2, "China"},
	"APSYSTEMS":      {model.Tier2, "China"},
	"ENPHASE":        {model.Tier1, "USA"},
	"PYLONTECH":      {model.Tier1, "China"},
}

// ManufacturerNormalizer maps raw manufacturer text to canonical names. It
// holds only static tables and is safe for concurrent use.
type ManufacturerNormalizer struct {
	aliases map[string]string
	known   map[string]ManufacturerInfo
}

// NewManufacturerNormalizer creates a normalizer with the built-in tables.
// extraAliases (normalized variant -> canonical) override built-ins.
func NewManufacturerNormalizer(extraAliases map[string]string) *ManufacturerNormalizer {
	aliases := make(map[string]string, len(defaultAliases)+len(extraAliases))
	for k, v := range defaultAliases {
		aliases[k] = v
	}
	n := &ManufacturerNormalizer{aliases: aliases, known: knownManufacturers}
	for k, v := range extraAliases {
		aliases[n.clean(k)] = n.clean(v)
	}
	return n
}

// Normalize returns the canonical manufacturer name, or UNKNOWN.
func (n *ManufacturerNormalizer) Normalize(raw string) string {
	cleaned := n.clean(raw)
	if cleaned == "" {
		return model.UnknownManufacturer
	}

	if canonical, ok := n.aliases[cleaned]; ok {
		return canonical
	}

	// Try again without legal-entity suffixes ("CANADIAN SOLAR INC")
	tokens := strings.Fields(cleaned)
	for len(tokens) > 1 && legalSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	stripped := strings.Join(tokens, " ")
	if canonical, ok := n.aliases[stripped]; ok {
		return canonical
	}

	return stripped
}

// Info returns tier and country for a canonical name.
func (n *ManufacturerNormalizer) Info(canonical string) ManufacturerInfo {
	if info, ok := n.known[canonical]; ok {
		return info
	}
	return ManufacturerInfo{Tier: model.TierUnknown}
}

// Detect returns the canonical name of a known manufacturer mentioned in
// free text, preferring longer phrases, or "" when none is found.
func (n *ManufacturerNormalizer) Detect(text string) string {
	tokens := strings.Fields(n.clean(text))
	for size := 3; size >= 1; size-- {
		for i := 0; i+size <= len(tokens); i++ {
			phrase := strings.Join(tokens[i:i+size], " ")
			if canonical, ok := n.aliases[phrase]; ok {
				return canonical
			}
			if _, ok := n.known[phrase]; ok {
				return phrase
			}
		}
	}
	return ""
}

// clean uppercases, strips accents and punctuation, collapses whitespace.
func (n *ManufacturerNormalizer) clean(raw string) string {
	s := strings.ToUpper(RemoveAccents(raw))
	s = manufacturerInvalidRegex.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// ManufacturerRegistry accumulates aliases and per-category product counts
// for one pipeline run. It is not safe for concurrent use; give each
// goroutine its own registry and Merge them afterwards.
type ManufacturerRegistry struct {
	normalizer *ManufacturerNormalizer
	entries    map[string]*registryEntry
}

type registryEntry struct {
	aliases map[string]struct{}
	counts  map[model.Category]int
}

// NewManufacturerRegistry creates an empty registry.
func NewManufacturerRegistry(normalizer *ManufacturerNormalizer) *ManufacturerRegistry {
	return &ManufacturerRegistry{
		normalizer: normalizer,
		entries:    make(map[string]*registryEntry),
	}
}

// Normalizer returns the normalizer backing the registry.
func (r *ManufacturerRegistry) Normalizer() *ManufacturerNormalizer {
	return r.normalizer
}

// Register normalizes raw, records it as an alias and counts one product in
// category. UNKNOWN is returned but never recorded.
func (r *ManufacturerRegistry) Register(raw string, category model.Category) string {
	canonical := r.normalizer.Normalize(raw)
	if canonical == model.UnknownManufacturer {
		return canonical
	}

	entry := r.entry(canonical)
	entry.aliases[strings.TrimSpace(raw)] = struct{}{}
	entry.counts[category]++
	return canonical
}

func (r *ManufacturerRegistry) entry(canonical string) *registryEntry {
	entry, ok := r.entries[canonical]
	if !ok {
		entry = &registryEntry{
			aliases: make(map[string]struct{}),
			counts:  make(map[model.Category]int),
		}
		r.entries[canonical] = entry
	}
	return entry
}

// Merge folds other into r. other is left untouched.
func (r *ManufacturerRegistry) Merge(other *ManufacturerRegistry) {
	for name, src := range other.entries {
		dst := r.entry(name)
		for alias := range src.aliases {
			dst.aliases[alias] = struct{}{}
		}
		for c, n := range src.counts {
			dst.counts[c] += n
		}
	}
}

// Reset discards all accumulated state.
func (r *ManufacturerRegistry) Reset() {
	r.entries = make(map[string]*registryEntry)
}

// Len returns the number of distinct manufacturers seen.
func (r *ManufacturerRegistry) Len() int {
	return len(r.entries)
}

// Manufacturers returns a snapshot sorted by name.
func (r *ManufacturerRegistry) Manufacturers() []model.Manufacturer {
	out := make([]model.Manufacturer, 0, len(r.entries))
	for name, entry := range r.entries {
		aliases := make([]string, 0, len(entry.aliases))
		for a := range entry.aliases {
			aliases = append(aliases, a)
		}
		slices.Sort(aliases)

		counts := make(map[model.Category]int, len(entry.counts))
		for c, n := range entry.counts {
			counts[c] = n
		}

		info := r.normalizer.Info(name)
		out = append(out, model.Manufacturer{
			Name:          name,
			Aliases:       aliases,
			Tier:          info.Tier,
			Country:       info.Country,
			ProductCounts: counts,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
