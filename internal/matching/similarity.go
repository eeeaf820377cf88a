package matching

import "strings"

// Similarity returns 1 - levenshtein(a,b)/max(len(a),len(b)), compared
// case-insensitively on runes. Two empty strings are identical.
func Similarity(a, b string) float64 {
	ar := []rune(strings.ToLower(a))
	br := []rune(strings.ToLower(b))

	longest := max(len(ar), len(br))
	if longest == 0 {
		return 1
	}

	dist := levenshtein(ar, br)
	return 1 - float64(dist)/float64(longest)
}

// Levenshtein returns the edit distance between a and b.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i, ca := range a {
		curr[0] = i + 1
		for j, cb := range b {
			cost := 1
			if ca == cb {
				cost = 0
			}
			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
