package catalog

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tbourn/go-waiter-catalog/internal/textnorm"
)

// FacetValue is one distinct facet value. Key is the normalized form; Label
// is the first spelling seen in collection order.
type FacetValue struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// FacetIndex holds the available values of every facet in display order.
type FacetIndex struct {
	Categories []FacetValue `json:"categories"`
	Allergens  []FacetValue `json:"allergens"`
	Tags       []FacetValue `json:"tags"`
	TagGroups  []TagGroup   `json:"tag_groups,omitempty"`
}

// DefaultAllergenPriority is the curated allergen order shown before all
// other allergens.
var DefaultAllergenPriority = []string{
	"орехи", "лактоза", "глютен", "яйца", "морепродукты", "рыба", "цитрусы", "кунжут", "горчица",
	"nuts", "lactose", "gluten", "eggs", "seafood", "fish", "citrus", "sesame", "mustard",
}

// FacetBuilder derives facet indexes. The zero value sorts with the root
// collation, uses no allergen priority and does not group tags.
type FacetBuilder struct {
	Locale           language.Tag
	AllergenPriority []string
	Layout           *TagLayout
}

// NewFacetBuilder returns a builder with the default allergen priority and
// tag layout.
func NewFacetBuilder(locale language.Tag) FacetBuilder {
	return FacetBuilder{
		Locale:           locale,
		AllergenPriority: DefaultAllergenPriority,
		Layout:           DefaultTagLayout(),
	}
}

// Build derives the facet index of entries and returns st with selections
// pruned to values that still exist. The returned index marks the surviving
// selections.
func (b FacetBuilder) Build(entries []Entry, st FilterState) (FacetIndex, FilterState) {
	// collate.Collator is not safe for concurrent use.
	col := collate.New(b.Locale)

	cats := distinct(entries, func(e *Entry) []string { return []string{e.Category} })
	alls := distinct(entries, func(e *Entry) []string { return e.Allergens })
	tags := distinct(entries, func(e *Entry) []string { return e.Tags })

	sortByLabel(col, cats)
	b.sortAllergens(col, alls)
	sortByLabel(col, tags)

	pruned := st
	pruned.Categories = st.Categories.keep(keysOf(cats))
	pruned.Allergens = st.Allergens.keep(keysOf(alls))
	pruned.Tags = st.Tags.keep(keysOf(tags))

	markSelected(cats, pruned.Categories)
	markSelected(alls, pruned.Allergens)
	markSelected(tags, pruned.Tags)

	idx := FacetIndex{Categories: cats, Allergens: alls, Tags: tags}
	if b.Layout != nil {
		idx.TagGroups = b.Layout.Arrange(tags)
	}
	return idx, pruned
}

// distinct collapses values by normalized key. Count is the number of entries
// carrying the value.
func distinct(entries []Entry, get func(*Entry) []string) []FacetValue {
	pos := make(map[string]int)
	var out []FacetValue
	for i := range entries {
		seenHere := make(map[string]struct{})
		for _, raw := range get(&entries[i]) {
			k := textnorm.Key(raw)
			if k == "" {
				continue
			}
			if _, dup := seenHere[k]; dup {
				continue
			}
			seenHere[k] = struct{}{}
			if p, ok := pos[k]; ok {
				out[p].Count++
				continue
			}
			pos[k] = len(out)
			out = append(out, FacetValue{Key: k, Label: textnorm.Clean(raw), Count: 1})
		}
	}
	return out
}

func sortByLabel(col *collate.Collator, vals []FacetValue) {
	sort.SliceStable(vals, func(i, j int) bool {
		if c := col.CompareString(vals[i].Label, vals[j].Label); c != 0 {
			return c < 0
		}
		return vals[i].Key < vals[j].Key
	})
}

// sortAllergens orders listed allergens by priority, then everything else by
// collation.
func (b FacetBuilder) sortAllergens(col *collate.Collator, vals []FacetValue) {
	rank := make(map[string]int, len(b.AllergenPriority))
	for i, a := range b.AllergenPriority {
		if k := textnorm.Key(a); k != "" {
			if _, ok := rank[k]; !ok {
				rank[k] = i
			}
		}
	}
	lowest := len(b.AllergenPriority)
	rankOf := func(k string) int {
		if r, ok := rank[k]; ok {
			return r
		}
		return lowest
	}
	sort.SliceStable(vals, func(i, j int) bool {
		ri, rj := rankOf(vals[i].Key), rankOf(vals[j].Key)
		if ri != rj {
			return ri < rj
		}
		if c := col.CompareString(vals[i].Label, vals[j].Label); c != 0 {
			return c < 0
		}
		return vals[i].Key < vals[j].Key
	})
}

func keysOf(vals []FacetValue) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v.Key] = struct{}{}
	}
	return m
}

func markSelected(vals []FacetValue, sel Selection) {
	for i := range vals {
		_, vals[i].Selected = sel[vals[i].Key]
	}
}
