package search

import "strings"

// Record is one searchable item flattened into field key -> values. Nested
// structures use dotted keys ("pairings.wines", "i18n.en.title-en").
type Record map[string][]string

// Add appends the non-blank values under key.
func (r Record) Add(key string, vals ...string) {
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			continue
		}
		r[key] = append(r[key], v)
	}
}
