package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// record is one export entry with its keys lowercased.
type record map[string]json.RawMessage

var quantityRegex = regexp.MustCompile(`(-?\d[\d.,]*)\s*([a-zA-Z%°/]*)`)

func newRecord(raw map[string]json.RawMessage) record {
	r := make(record, len(raw))
	for k, v := range raw {
		r[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return r
}

// lookup returns the first non-null value among keys.
func (r record) lookup(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

func (r record) str(keys ...string) string {
	v, ok := r.lookup(keys...)
	if !ok {
		return ""
	}
	return rawString(v)
}

func (r record) num(keys ...string) float64 {
	v, ok := r.lookup(keys...)
	if !ok {
		return 0
	}
	n, _, _ := rawQuantity(v)
	return n
}

func (r record) quantity(keys ...string) (float64, string, bool) {
	v, ok := r.lookup(keys...)
	if !ok {
		return 0, "", false
	}
	return rawQuantity(v)
}

func (r record) integer(keys ...string) int {
	return int(r.num(keys...))
}

func (r record) boolean(keys ...string) (bool, bool) {
	v, ok := r.lookup(keys...)
	if !ok {
		return false, false
	}
	return rawBool(v)
}

func isNull(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func isJSONString(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) > 0 && t[0] == '"'
}

// rawString renders strings verbatim and numbers/bools as their literal.
func rawString(v json.RawMessage) string {
	if isJSONString(v) {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return strings.TrimSpace(s)
		}
		return ""
	}
	t := bytes.TrimSpace(v)
	if len(t) > 0 && (t[0] == '{' || t[0] == '[') {
		return ""
	}
	return string(t)
}

// rawQuantity reads a number, or a string like "550 W" / "5,5 kWp" /
// "-0,29 %/°C", returning the value and its lowercased unit.
func rawQuantity(v json.RawMessage) (float64, string, bool) {
	if !isJSONString(v) {
		f, err := strconv.ParseFloat(string(bytes.TrimSpace(v)), 64)
		if err != nil {
			return 0, "", false
		}
		return f, "", true
	}

	m := quantityRegex.FindStringSubmatch(rawString(v))
	if m == nil {
		return 0, "", false
	}
	f, err := strconv.ParseFloat(canonicalDecimal(strings.TrimRight(m[1], ".,")), 64)
	if err != nil {
		return 0, "", false
	}
	return f, strings.ToLower(m[2]), true
}

func rawBool(v json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b, true
	}
	if n, _, ok := rawQuantity(v); ok && !isJSONString(v) {
		return n != 0, true
	}
	switch strings.ToLower(rawString(v)) {
	case "true", "yes", "sim", "s", "y", "in_stock", "instock", "available", "disponivel", "disponível", "em estoque":
		return true, true
	case "false", "no", "nao", "não", "n", "out_of_stock", "unavailable", "indisponivel", "indisponível", "sem estoque":
		return false, true
	}
	return false, false
}

// rawRange reads "120-550V", "120 ~ 550 V" or [120, 550].
func rawRange(v json.RawMessage) (float64, float64, bool) {
	var pair []float64
	if err := json.Unmarshal(v, &pair); err == nil && len(pair) == 2 {
		return pair[0], pair[1], true
	}
	matches := quantityRegex.FindAllStringSubmatch(rawString(v), 2)
	if len(matches) != 2 {
		return 0, 0, false
	}
	lo, err1 := strconv.ParseFloat(canonicalDecimal(matches[0][1]), 64)
	hi, err2 := strconv.ParseFloat(canonicalDecimal(matches[1][1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	// "120-550" reads the second bound as -550
	return math.Abs(lo), math.Abs(hi), true
}
