package catalog

import (
	"encoding/json"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/tbourn/go-waiter-catalog/internal/search"
	"github.com/tbourn/go-waiter-catalog/internal/textnorm"
)

// FacetKind names one of the three facets.
type FacetKind string

const (
	FacetCategory  FacetKind = "category"
	FacetAllergens FacetKind = "allergens"
	FacetTags      FacetKind = "tags"
)

// ParseFacetKind accepts the facet names used by callers, including the
// singular and "menu" aliases.
func ParseFacetKind(s string) (FacetKind, bool) {
	switch textnorm.Key(s) {
	case "category", "categories", "cat", "menu", "menus":
		return FacetCategory, true
	case "allergen", "allergens":
		return FacetAllergens, true
	case "tag", "tags":
		return FacetTags, true
	}
	return "", false
}

// Selection is a set of normalized facet values. Methods never modify the
// receiver; a nil Selection is empty.
type Selection map[string]struct{}

// NewSelection builds a selection from raw values.
func NewSelection(vals ...string) Selection {
	keys := textnorm.Keys(vals)
	s := make(Selection, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether v (normalized) is selected.
func (s Selection) Has(v string) bool {
	_, ok := s[textnorm.Key(v)]
	return ok
}

// Len returns the number of selected values.
func (s Selection) Len() int { return len(s) }

// Toggle returns a copy of s with v added, or removed when already present.
func (s Selection) Toggle(v string) Selection {
	k := textnorm.Key(v)
	out := make(Selection, len(s)+1)
	for x := range s {
		out[x] = struct{}{}
	}
	if k == "" {
		return out
	}
	if _, ok := out[k]; ok {
		delete(out, k)
	} else {
		out[k] = struct{}{}
	}
	return out
}

// Values returns the selected keys in sorted order.
func (s Selection) Values() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the selection as a sorted array.
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes an array of raw values.
func (s *Selection) UnmarshalJSON(b []byte) error {
	var vals []string
	if err := json.Unmarshal(b, &vals); err != nil {
		return err
	}
	*s = NewSelection(vals...)
	return nil
}

// keep returns the subset of s present in available.
func (s Selection) keep(available map[string]struct{}) Selection {
	out := make(Selection, len(s))
	for k := range s {
		if _, ok := available[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// FilterState is the caller-owned query: free text plus three independent
// facet selections. It is passed by value.
type FilterState struct {
	Query      string    `json:"query"`
	Categories Selection `json:"categories"`
	Allergens  Selection `json:"allergens"`
	Tags       Selection `json:"tags"`
}

// WithQuery returns a copy of st with the query replaced.
func (st FilterState) WithQuery(q string) FilterState {
	st.Query = q
	return st
}

// Toggle returns a copy of st with value toggled in the given facet.
// Unknown facets leave the state unchanged.
func (st FilterState) Toggle(kind FacetKind, value string) FilterState {
	switch kind {
	case FacetCategory:
		st.Categories = st.Categories.Toggle(value)
	case FacetAllergens:
		st.Allergens = st.Allergens.Toggle(value)
	case FacetTags:
		st.Tags = st.Tags.Toggle(value)
	}
	return st
}

// HasFacets reports whether any facet value is selected.
func (st FilterState) HasFacets() bool {
	return st.Categories.Len() > 0 || st.Allergens.Len() > 0 || st.Tags.Len() > 0
}

// Matches reports whether e satisfies every facet of st. Facet kinds combine
// with AND. Categories are OR within the facet; allergens and tags are AND
// within the facet, so an entry must carry every selected value.
func (st FilterState) Matches(e *Entry) bool {
	return matchCategoryAny(e.Category, st.Categories) &&
		matchAll(e.Allergens, st.Allergens) &&
		matchAll(e.Tags, st.Tags)
}

func matchCategoryAny(category string, sel Selection) bool {
	if len(sel) == 0 {
		return true
	}
	_, ok := sel[textnorm.Key(category)]
	return ok
}

func matchAll(vals []string, sel Selection) bool {
	if len(sel) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		have[textnorm.Key(v)] = struct{}{}
	}
	for k := range sel {
		if _, ok := have[k]; !ok {
			return false
		}
	}
	return true
}

// Evaluator combines the text matcher with facet filtering.
type Evaluator struct {
	Matcher       search.Matcher
	MinQueryRunes int
}

// QueryActive reports whether q is long enough to be searched.
func (ev Evaluator) QueryActive(q string) bool {
	k := textnorm.Key(q)
	return k != "" && utf8.RuneCountInString(k) >= ev.MinQueryRunes && ev.Matcher != nil
}

// Eval returns the positions of the visible entries. With an active query the
// order is the matcher's relevance order; otherwise it is collection order.
// Entries passing the facets are kept once per id, first occurrence wins.
func (ev Evaluator) Eval(entries []Entry, st FilterState) []int {
	seen := make(map[string]struct{}, len(entries))
	out := make([]int, 0, len(entries))
	visit := func(pos int) {
		if pos < 0 || pos >= len(entries) {
			return
		}
		e := &entries[pos]
		id := dedupKey(e, pos)
		if _, dup := seen[id]; dup {
			return
		}
		if !st.Matches(e) {
			return
		}
		seen[id] = struct{}{}
		out = append(out, pos)
	}

	if ev.QueryActive(st.Query) {
		for _, h := range ev.Matcher.Search(st.Query) {
			visit(h.Pos)
		}
		return out
	}
	for pos := range entries {
		visit(pos)
	}
	return out
}

// dedupKey is the id of e, or its position when the id is blank.
func dedupKey(e *Entry, pos int) string {
	if e.ID != "" {
		return "id:" + e.ID
	}
	return "pos:" + strconv.Itoa(pos)
}
