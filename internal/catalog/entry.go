// Package catalog is the waiter reference catalog engine. It enriches a flat
// batch of menu entries with symmetric pairing references, indexes them for
// free-text search, derives the category/allergen/tag facets and evaluates
// combined query + facet selections against the result.
//
// Everything in this package is pure computation over in-memory values. The
// only shared mutable state is the current Snapshot held by Catalog, which is
// replaced wholesale on every load.
package catalog

import (
	"encoding/json"
	"strings"
	"time"
)

// Entry is one dish, wine or bar item.
type Entry struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"menu"`
	Section     string     `json:"section"`
	Description string     `json:"description"`
	Contains    string     `json:"contains,omitempty"`
	Features    StringList `json:"features,omitempty"`
	Status      string     `json:"status,omitempty"`
	SourceFile  string     `json:"source_file,omitempty"`
	Ingredients StringList `json:"ingredients"`
	Allergens   StringList `json:"allergens"`
	Tags        StringList `json:"tags"`
	Pairings    Pairings   `json:"pairings"`
	I18n        *I18n      `json:"i18n,omitempty"`

	// UpdateSource and UpdatedAt are the provenance of the last write as
	// recorded by the editing surface.
	UpdateSource string `json:"update_source,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`

	// Provenance is attached at load time and is display-only.
	Provenance Provenance `json:"provenance"`
}

// Pairings lists the titles of entries this entry is recommended with. Notes
// are free text and never treated as references.
type Pairings struct {
	Wines  StringList `json:"wines"`
	Drinks StringList `json:"drinks"`
	Dishes StringList `json:"dishes"`
	Notes  StringList `json:"notes,omitempty"`
}

// I18n holds secondary-language projections. Only English is searched.
type I18n struct {
	EN *Translation `json:"en,omitempty"`
}

// Translation is the English projection of an entry.
type Translation struct {
	Title       string  `json:"title-en,omitempty"`
	Description string  `json:"description-en,omitempty"`
	Category    string  `json:"menu-en,omitempty"`
	Section     string  `json:"section-en,omitempty"`
	Contains    string  `json:"contains-en,omitempty"`
	Allergens   CSVList `json:"allergens-en,omitempty"`
	Tags        CSVList `json:"tags-en,omitempty"`
}

// Provenance records where the batch holding an entry came from.
type Provenance struct {
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	c := e
	c.Features = e.Features.clone()
	c.Ingredients = e.Ingredients.clone()
	c.Allergens = e.Allergens.clone()
	c.Tags = e.Tags.clone()
	c.Pairings = e.Pairings.Clone()
	if e.I18n != nil {
		i := *e.I18n
		if e.I18n.EN != nil {
			en := *e.I18n.EN
			en.Allergens = CSVList(StringList(en.Allergens).clone())
			en.Tags = CSVList(StringList(en.Tags).clone())
			i.EN = &en
		}
		c.I18n = &i
	}
	return c
}

// Clone returns a deep copy of p. Missing lists become empty, never nil, so
// enrichment can append to them.
func (p Pairings) Clone() Pairings {
	return Pairings{
		Wines:  nonNil(p.Wines.clone()),
		Drinks: nonNil(p.Drinks.clone()),
		Dishes: nonNil(p.Dishes.clone()),
		Notes:  p.Notes.clone(),
	}
}

// English returns the English projection of e as a standalone entry, or false
// when the entry carries no English content. Pairings and ingredients are not
// translated and are left empty.
func (e Entry) English() (Entry, bool) {
	if e.I18n == nil || e.I18n.EN == nil {
		return Entry{}, false
	}
	en := e.I18n.EN
	if en.Title == "" && en.Description == "" && en.Category == "" && en.Section == "" &&
		en.Contains == "" && len(en.Allergens) == 0 && len(en.Tags) == 0 {
		return Entry{}, false
	}
	return Entry{
		ID:          e.ID,
		Title:       strings.TrimSpace(en.Title),
		Category:    strings.TrimSpace(en.Category),
		Section:     strings.TrimSpace(en.Section),
		Description: strings.TrimSpace(en.Description),
		Contains:    strings.TrimSpace(en.Contains),
		SourceFile:  e.SourceFile,
		Ingredients: StringList{},
		Allergens:   StringList(en.Allergens).clone(),
		Tags:        StringList(en.Tags).clone(),
		Pairings:    Pairings{}.Clone(),
		UpdatedAt:   e.UpdatedAt,
		Provenance:  e.Provenance,
	}, true
}

// StringList is a list of strings that also decodes from a single JSON
// string (wrapped as one element) or null. Non-string elements are skipped.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*l = nil
	case string:
		if strings.TrimSpace(v) == "" {
			*l = StringList{}
		} else {
			*l = StringList{v}
		}
	case []any:
		out := make(StringList, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		*l = out
	default:
		*l = StringList{}
	}
	return nil
}

func (l StringList) clone() StringList {
	if l == nil {
		return nil
	}
	out := make(StringList, len(l))
	copy(out, l)
	return out
}

func nonNil(l StringList) StringList {
	if l == nil {
		return StringList{}
	}
	return l
}

// CSVList is a StringList whose string form is split on commas and newlines.
type CSVList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *CSVList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = CSVList(SplitList(s))
		return nil
	}
	var sl StringList
	if err := sl.UnmarshalJSON(b); err != nil {
		return err
	}
	*l = CSVList(sl)
	return nil
}

// SplitList splits s on commas and newlines, trimming and dropping blanks.
func SplitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
