package uml

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// NameSimilarity returns the normalized Levenshtein similarity of two names,
// ignoring case: 1 - distance / max(len(a), len(b)). Two empty names are
// identical.
func NameSimilarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}

	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	distance := levenshtein.ComputeDistance(a, b)
	return clamp(1 - float64(distance)/float64(maxLen))
}

// NameEqualsSimilarity scores exact equality of two names: 1 or 0.
func NameEqualsSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	return 0
}
