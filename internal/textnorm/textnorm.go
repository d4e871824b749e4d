// Package textnorm derives the case- and whitespace-insensitive keys used to
// compare titles, facet values and search text across the catalog.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Key returns the normalized form of s: NFC-composed, trimmed, inner
// whitespace runs collapsed to one space, and lower-cased.
//
// An empty or whitespace-only input yields "", which callers treat as
// "no value".
func Key(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Join(strings.Fields(norm.NFC.String(s)), " ")
	if s == "" {
		return ""
	}
	// cases.Caser keeps internal state and is not safe for concurrent use.
	return cases.Lower(language.Und).String(s)
}

// Equal reports whether a and b normalize to the same non-empty key.
func Equal(a, b string) bool {
	ka := Key(a)
	return ka != "" && ka == Key(b)
}

// Keys normalizes every value and drops the empty ones, keeping order and
// duplicates.
func Keys(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if k := Key(v); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Clean trims and collapses whitespace without changing case. It is used for
// display labels so that "  Red   wine " renders as "Red wine".
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
