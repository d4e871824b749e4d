package catalog

import (
	"sync/atomic"
	"time"

	"golang.org/x/text/language"

	"github.com/tbourn/go-waiter-catalog/internal/search"
)

// Options configures how snapshots are built.
type Options struct {
	// Locale drives facet collation.
	Locale language.Tag
	// MinQueryRunes is the shortest query that is searched.
	MinQueryRunes int
	// Threshold is the matcher tolerance; 0 is exact substring matching.
	Threshold float64
	// AllergenPriority and Layout shape the facet index.
	AllergenPriority []string
	Layout           *TagLayout
	// Now stamps batches that carry no load time.
	Now func() time.Time
}

// DefaultOptions returns the production defaults: Russian collation, exact
// matching, two-rune minimum query.
func DefaultOptions() Options {
	return Options{
		Locale:           language.Russian,
		MinQueryRunes:    2,
		Threshold:        0,
		AllergenPriority: DefaultAllergenPriority,
		Layout:           DefaultTagLayout(),
		Now:              time.Now,
	}
}

// Batch is one raw collection handed over by a data source.
type Batch struct {
	Entries  []Entry
	Source   string
	LoadedAt time.Time
}

// View is what a renderer needs after an interaction.
type View struct {
	Entries []Entry     `json:"items"`
	Count   int         `json:"count"`
	Facets  FacetIndex  `json:"facets"`
	State   FilterState `json:"selection"`
	Version uint64      `json:"version"`
}

// Snapshot is an immutable enriched collection with its search and facet
// indexes. It is safe for concurrent readers.
type Snapshot struct {
	Version  uint64
	Source   string
	LoadedAt time.Time

	// DuplicateIDs lists ids that appeared more than once in the batch;
	// lookups resolve to the first occurrence.
	DuplicateIDs []string

	entries []Entry
	byID    map[string]int
	eval    Evaluator
	facets  FacetIndex
	keys    [3]map[string]struct{}
}

// NewSnapshot decorates, enriches and indexes a batch.
func NewSnapshot(b Batch, opts Options, version uint64) *Snapshot {
	if b.LoadedAt.IsZero() {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		b.LoadedAt = now()
	}

	raw := make([]Entry, len(b.Entries))
	for i, e := range b.Entries {
		src := e.UpdateSource
		if src == "" {
			src = b.Source
		}
		e.Provenance = Provenance{Source: src, LoadedAt: b.LoadedAt}
		raw[i] = e
	}
	entries := Enrich(raw)

	byID := make(map[string]int, len(entries))
	var dups []string
	for i := range entries {
		id := entries[i].ID
		if id == "" {
			continue
		}
		if _, ok := byID[id]; ok {
			dups = append(dups, id)
			continue
		}
		byID[id] = i
	}

	fb := FacetBuilder{Locale: opts.Locale, AllergenPriority: opts.AllergenPriority, Layout: opts.Layout}
	fi, _ := fb.Build(entries, FilterState{})

	return &Snapshot{
		Version:      version,
		Source:       b.Source,
		LoadedAt:     b.LoadedAt,
		DuplicateIDs: dups,
		entries:      entries,
		byID:         byID,
		eval: Evaluator{
			Matcher:       NewMatcher(entries, search.WithThreshold(opts.Threshold), search.WithMinQueryRunes(opts.MinQueryRunes)),
			MinQueryRunes: opts.MinQueryRunes,
		},
		facets: fi,
		keys:   [3]map[string]struct{}{keysOf(fi.Categories), keysOf(fi.Allergens), keysOf(fi.Tags)},
	}
}

// Len returns the number of entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Entries returns the enriched collection in load order. Callers must not
// modify it.
func (s *Snapshot) Entries() []Entry { return s.entries }

// Lookup returns the entry with the given id.
func (s *Snapshot) Lookup(id string) (Entry, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Prune drops selections that no longer exist in this snapshot.
func (s *Snapshot) Prune(st FilterState) FilterState {
	st.Categories = st.Categories.keep(s.keys[0])
	st.Allergens = st.Allergens.keep(s.keys[1])
	st.Tags = st.Tags.keep(s.keys[2])
	return st
}

// Facets returns the facet index with st's surviving selections marked, and
// the pruned state.
func (s *Snapshot) Facets(st FilterState) (FacetIndex, FilterState) {
	st = s.Prune(st)
	return s.facets.withSelection(st), st
}

// Query prunes st, evaluates it and returns the resulting view.
func (s *Snapshot) Query(st FilterState) View {
	fi, st := s.Facets(st)
	pos := s.eval.Eval(s.entries, st)
	out := make([]Entry, len(pos))
	for i, p := range pos {
		out[i] = s.entries[p]
	}
	return View{Entries: out, Count: len(out), Facets: fi, State: st, Version: s.Version}
}

// QueryActive reports whether q would be searched rather than ignored.
func (s *Snapshot) QueryActive(q string) bool { return s.eval.QueryActive(q) }

func (fi FacetIndex) withSelection(st FilterState) FacetIndex {
	mark := func(vals []FacetValue, sel Selection) []FacetValue {
		if vals == nil {
			return nil
		}
		out := make([]FacetValue, len(vals))
		copy(out, vals)
		markSelected(out, sel)
		return out
	}
	res := FacetIndex{
		Categories: mark(fi.Categories, st.Categories),
		Allergens:  mark(fi.Allergens, st.Allergens),
		Tags:       mark(fi.Tags, st.Tags),
	}
	if fi.TagGroups != nil {
		res.TagGroups = make([]TagGroup, len(fi.TagGroups))
		for i, g := range fi.TagGroups {
			secs := make([]TagSection, len(g.Sections))
			for j, sec := range g.Sections {
				secs[j] = TagSection{Name: sec.Name, Values: mark(sec.Values, st.Tags)}
			}
			res.TagGroups[i] = TagGroup{Name: g.Name, Sections: secs}
		}
	}
	return res
}

// Catalog holds the current snapshot. Load replaces it atomically; readers
// always see a complete snapshot.
type Catalog struct {
	opts    Options
	cur     atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// New returns a catalog holding an empty snapshot.
func New(opts Options) *Catalog {
	c := &Catalog{opts: opts}
	c.cur.Store(NewSnapshot(Batch{}, opts, 0))
	return c
}

// Load builds a snapshot from b and makes it current.
func (c *Catalog) Load(b Batch) *Snapshot {
	s := NewSnapshot(b, c.opts, c.version.Add(1))
	c.cur.Store(s)
	return s
}

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *Snapshot { return c.cur.Load() }

// Query evaluates st against the current snapshot.
func (c *Catalog) Query(st FilterState) View { return c.Snapshot().Query(st) }

// Lookup finds an entry by id in the current snapshot.
func (c *Catalog) Lookup(id string) (Entry, bool) { return c.Snapshot().Lookup(id) }
