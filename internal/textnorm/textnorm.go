// Package textnorm folds user-entered text for comparisons: case, diacritics
// and whitespace runs are ignored.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s, strips combining marks and collapses whitespace.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Equal compares two strings after folding.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// ContainsAny reports whether the folded s contains any folded needle.
func ContainsAny(s string, needles ...string) bool {
	folded := Fold(s)
	for _, needle := range needles {
		if n := Fold(needle); n != "" && strings.Contains(folded, n) {
			return true
		}
	}
	return false
}

// Dedup keeps the first occurrence of each folded value and drops blanks.
func Dedup(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := Fold(v)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
