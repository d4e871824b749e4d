// Package search provides a deterministic, concurrency-safe in-memory text
// matcher over flattened records. It is the pluggable "given a field-key list
// and a query, return matching records" capability used by the catalog:
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options (Option pattern) with sensible defaults
//   - Immutable, read-only index after construction (safe for concurrent use)
//   - Deterministic scoring and sorting (collection order breaks ties)
//
// With the default threshold of 0 a record matches when the normalized query is
// an exact substring of any indexed field. A positive threshold switches to
// approximate substring matching that tolerates floor(threshold*len(query))
// edits. Scores are in [0,1); lower is better.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tbourn/go-waiter-catalog/internal/textnorm"
)

// Hit is a matching record position with its score.
type Hit struct {
	Pos   int     // index of the record in the slice passed to NewIndex
	Score float64 // lower is better
	Field string  // key of the best matching field
}

// Matcher is the minimal interface implemented by all text matchers.
type Matcher interface {
	// Search returns the matching records in relevance order. Queries shorter
	// than the configured minimum return nil.
	Search(query string) []Hit
	// Len reports the number of indexed records.
	Len() int
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	keys           []string
	threshold      float64
	minQueryRunes  int
	ignoreLocation bool
	limit          int
}

func defaultConfig() config {
	return config{
		keys:           nil,
		threshold:      0,
		minQueryRunes:  2,
		ignoreLocation: true,
		limit:          0,
	}
}

// WithKeys fixes the ordered list of record keys that are searched. Earlier
// keys rank higher. Without it every key of every record is searched in
// lexical order.
func WithKeys(keys ...string) Option {
	return func(c *config) {
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
		if len(out) > 0 {
			c.keys = out
		}
	}
}

// WithThreshold sets the match tolerance in [0,1]. 0 means exact substring
// containment.
func WithThreshold(t float64) Option {
	return func(c *config) {
		if t >= 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// WithMinQueryRunes sets the minimum normalized query length in runes.
func WithMinQueryRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minQueryRunes = n
		}
	}
}

// WithIgnoreLocation controls whether the offset of a match inside a field
// affects its score. The default (true) treats a match anywhere equally.
func WithIgnoreLocation(ignore bool) Option {
	return func(c *config) {
		c.ignoreLocation = ignore
	}
}

// WithLimit caps the number of hits returned. 0 means no cap.
func WithLimit(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.limit = n
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type field struct {
	key  int // position in cfg.keys
	text string
}

type doc struct {
	fields []field
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndex builds a Matcher over records. Values are normalized with
// textnorm.Key at build time; the records themselves are not retained.
func NewIndex(records []Record, opts ...Option) Matcher {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if len(cfg.keys) == 0 {
		cfg.keys = allKeys(records)
	}
	return buildIndex(records, cfg)
}

func buildIndex(records []Record, cfg config) *index {
	docs := make([]doc, len(records))
	for i, rec := range records {
		var fs []field
		for ki, k := range cfg.keys {
			for _, v := range rec[k] {
				if t := textnorm.Key(v); t != "" {
					fs = append(fs, field{key: ki, text: t})
				}
			}
		}
		docs[i] = doc{fields: fs}
	}
	return &index{cfg: cfg, docs: docs}
}

// Len reports the number of indexed records.
func (i *index) Len() int { return len(i.docs) }

// Search returns matching records ordered by score, then collection order.
func (i *index) Search(query string) []Hit {
	if len(i.docs) == 0 {
		return nil
	}
	q := textnorm.Key(query)
	qLen := utf8.RuneCountInString(q)
	if q == "" || qLen < i.cfg.minQueryRunes {
		return nil
	}

	maxEdits := int(i.cfg.threshold * float64(qLen))
	qRunes := []rune(q)
	nKeys := float64(len(i.cfg.keys))

	hits := make([]Hit, 0, 16)
	for pos, d := range i.docs {
		best := -1.0
		bestKey := -1
		for _, f := range d.fields {
			edits, offset, ok := i.match(q, qRunes, f.text, maxEdits)
			if !ok {
				continue
			}
			// Lexicographic (edits, key) packed into [0,1).
			score := (float64(edits)*nKeys + float64(f.key)) / (float64(qLen+1) * nKeys)
			if !i.cfg.ignoreLocation {
				score += locationPenalty(offset, f.text) / (float64(qLen+1) * nKeys)
			}
			if best < 0 || score < best {
				best = score
				bestKey = f.key
			}
		}
		if bestKey >= 0 {
			hits = append(hits, Hit{Pos: pos, Score: best, Field: i.cfg.keys[bestKey]})
		}
	}
	if len(hits) == 0 {
		return nil
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score < hits[b].Score
		}
		return hits[a].Pos < hits[b].Pos
	})

	if i.cfg.limit > 0 && len(hits) > i.cfg.limit {
		hits = hits[:i.cfg.limit]
	}
	return hits
}

// match reports whether q occurs in text within maxEdits, returning the edit
// count and the byte offset of the match when known.
func (i *index) match(q string, qRunes []rune, text string, maxEdits int) (edits, offset int, ok bool) {
	if off := strings.Index(text, q); off >= 0 {
		return 0, off, true
	}
	if maxEdits == 0 {
		return 0, 0, false
	}
	d := substringDistance(qRunes, []rune(text))
	if d <= maxEdits {
		return d, 0, true
	}
	return 0, 0, false
}

// locationPenalty maps a byte offset into [0,1) relative to the field length.
func locationPenalty(offset int, text string) float64 {
	if offset <= 0 || len(text) == 0 {
		return 0
	}
	return float64(offset) / float64(len(text)+1)
}

// substringDistance returns the minimum Levenshtein distance between p and
// any substring of t (Sellers' algorithm, O(len(p)*len(t))).
func substringDistance(p, t []rune) int {
	m := len(p)
	if m == 0 {
		return 0
	}
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	best := prev[m]
	for _, tr := range t {
		cur[0] = 0
		for j := 1; j <= m; j++ {
			cost := 1
			if p[j-1] == tr {
				cost = 0
			}
			cur[j] = min3(prev[j-1]+cost, prev[j]+1, cur[j-1]+1)
		}
		if cur[m] < best {
			best = cur[m]
		}
		prev, cur = cur, prev
	}
	return best
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func allKeys(records []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
