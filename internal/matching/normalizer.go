package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugInvalidRegex = regexp.MustCompile(`[^A-Z0-9]+`)

// Normalize normalizes a string for comparison
func Normalize(s string) string {
	// Convert to lowercase
	s = strings.ToLower(s)

	// Remove accents
	s = RemoveAccents(s)

	// Remove extra whitespace
	s = strings.Join(strings.Fields(s), " ")

	return s
}

// RemoveAccents strips combining marks (ç -> c, ã -> a).
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slug uppercases s, strips accents and joins alphanumeric runs with hyphens.
func Slug(s string) string {
	s = strings.ToUpper(RemoveAccents(s))
	s = slugInvalidRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NormalizeNumber normalizes number format (3,5 → 3.5)
func NormalizeNumber(s string) string {
	return strings.ReplaceAll(s, ",", ".")
}
