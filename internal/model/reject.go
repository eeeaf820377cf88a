package model

import "strings"

// IngestReject records a raw product that did not make it into a SKU, or was
// only partially usable.
type IngestReject struct {
	Category    Category `json:"category"`
	ProductID   string   `json:"product_id"`
	Distributor string   `json:"distributor"`
	Reason      string   `json:"reason"`
	Detail      string   `json:"detail,omitempty"`
}

// Reject reasons
const (
	RejectMissingManufacturer = "missing_manufacturer"
	RejectMissingPrice        = "missing_price"
	RejectInvalidRecord       = "invalid_record"
	RejectUnmatchedComponent  = "unmatched_component"
	RejectMpptIncompatible    = "mppt_incompatible"
	RejectUnknown             = "unknown"
)

// ClassifyReject maps a free-text problem description to a reject reason.
func ClassifyReject(msg string) string {
	switch {
	case containsAny(msg, "manufacturer", "fabricante"):
		return RejectMissingManufacturer
	case containsAny(msg, "price", "preco", "preço"):
		return RejectMissingPrice
	case containsAny(msg, "component", "componente"):
		return RejectUnmatchedComponent
	case containsAny(msg, "mppt"):
		return RejectMpptIncompatible
	case containsAny(msg, "decode", "invalid", "parse", "missing id"):
		return RejectInvalidRecord
	default:
		return RejectUnknown
	}
}

func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
