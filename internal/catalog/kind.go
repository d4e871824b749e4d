package catalog

import (
	"strings"
	"unicode"

	"github.com/tbourn/go-waiter-catalog/internal/textnorm"
)

// Kind is the closed set of entry kinds used to route back-references.
type Kind uint8

const (
	KindDish Kind = iota
	KindWine
	KindDrink
)

func (k Kind) String() string {
	switch k {
	case KindWine:
		return "wine"
	case KindDrink:
		return "drink"
	default:
		return "dish"
	}
}

// bucket is the pairing list a back-reference from an entry of this kind
// lands in.
func (k Kind) bucket() bucket {
	switch k {
	case KindWine:
		return bucketWines
	case KindDrink:
		return bucketDrinks
	default:
		return bucketDishes
	}
}

// Word prefixes and suffixes that mark wine and drink entries in the menu
// category or section. Matching is per word so that "свинина" or "винегрет"
// do not read as wine. "бар" matches as a suffix ("бар", "минибар") and never
// as a prefix, so "барбекю" stays a dish.
var (
	winePrefixes  = []string{"вино", "вина", "винн", "wine"}
	drinkPrefixes = []string{"напит", "коктейл", "барн", "drink", "beverage", "cocktail"}
	drinkSuffixes = []string{"бар", "bar"}
)

// Classify derives the kind of e from its category and section. Wine wins
// over drink; anything unmatched is a dish.
func Classify(e *Entry) Kind {
	words := kindWords(e.Category, e.Section)
	for _, w := range words {
		if hasAnyPrefix(w, winePrefixes) {
			return KindWine
		}
	}
	for _, w := range words {
		if hasAnyPrefix(w, drinkPrefixes) || hasAnySuffix(w, drinkSuffixes) {
			return KindDrink
		}
	}
	return KindDish
}

func kindWords(fields ...string) []string {
	var out []string
	for _, f := range fields {
		out = append(out, strings.FieldsFunc(textnorm.Key(f), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})...)
	}
	return out
}

func hasAnyPrefix(w string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(w, p) {
			return true
		}
	}
	return false
}

func hasAnySuffix(w string, suffixes []string) bool {
	for _, p := range suffixes {
		if strings.HasSuffix(w, p) {
			return true
		}
	}
	return false
}
