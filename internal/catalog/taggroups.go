package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-waiter-catalog/internal/textnorm"
)

//go:embed taggroups.yaml
var defaultTagLayout []byte

// TagLayout describes how the tag facet is grouped for presentation.
type TagLayout struct {
	Groups   []TagGroupSpec `yaml:"groups"`
	Leftover LeftoverSpec   `yaml:"leftover"`
}

// TagGroupSpec is a named group of sections.
type TagGroupSpec struct {
	Name     string           `yaml:"name"`
	Sections []TagSectionSpec `yaml:"sections"`
}

// TagSectionSpec lists tags in display order.
type TagSectionSpec struct {
	Name string   `yaml:"name"`
	Tags []string `yaml:"tags"`
}

// LeftoverSpec receives every tag no group placed. Other names the final
// section holding whatever its own sections did not place either.
type LeftoverSpec struct {
	Name     string           `yaml:"name"`
	Sections []TagSectionSpec `yaml:"sections"`
	Other    string           `yaml:"other"`
}

// DefaultTagLayout returns the built-in layout.
func DefaultTagLayout() *TagLayout {
	l, err := ParseTagLayout(defaultTagLayout)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded tag layout: %v", err))
	}
	return l
}

// ParseTagLayout decodes a YAML layout.
func ParseTagLayout(b []byte) (*TagLayout, error) {
	var l TagLayout
	if err := yaml.Unmarshal(b, &l); err != nil {
		return nil, err
	}
	for _, g := range l.Groups {
		if g.Name == "" {
			return nil, errors.New("tag layout: group name must not be empty")
		}
	}
	if l.Leftover.Name == "" {
		l.Leftover.Name = "Other"
	}
	if l.Leftover.Other == "" {
		l.Leftover.Other = "Other"
	}
	return &l, nil
}

// LoadTagLayout reads a YAML layout from path.
func LoadTagLayout(path string) (*TagLayout, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := ParseTagLayout(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// TagSection is a rendered section of the tag facet.
type TagSection struct {
	Name   string       `json:"name"`
	Values []FacetValue `json:"values"`
}

// TagGroup is a rendered group of the tag facet.
type TagGroup struct {
	Name     string       `json:"name"`
	Sections []TagSection `json:"sections"`
}

// Arrange places the available tags into groups. tags must already be in
// display order; it decides the order of the final "other" section. Each tag
// is placed once, in the first section listing it. Empty sections and groups
// are omitted.
func (l *TagLayout) Arrange(tags []FacetValue) []TagGroup {
	if len(tags) == 0 {
		return nil
	}
	byKey := make(map[string]FacetValue, len(tags))
	for _, t := range tags {
		byKey[t.Key] = t
	}
	used := make(map[string]struct{}, len(tags))

	place := func(specs []TagSectionSpec) []TagSection {
		var out []TagSection
		for _, s := range specs {
			var vals []FacetValue
			for _, raw := range s.Tags {
				k := textnorm.Key(raw)
				v, ok := byKey[k]
				if !ok {
					continue
				}
				if _, dup := used[k]; dup {
					continue
				}
				used[k] = struct{}{}
				vals = append(vals, v)
			}
			if len(vals) > 0 {
				out = append(out, TagSection{Name: s.Name, Values: vals})
			}
		}
		return out
	}

	var groups []TagGroup
	for _, g := range l.Groups {
		if secs := place(g.Sections); len(secs) > 0 {
			groups = append(groups, TagGroup{Name: g.Name, Sections: secs})
		}
	}

	if len(used) == len(tags) {
		return groups
	}
	secs := place(l.Leftover.Sections)
	var rest []FacetValue
	for _, t := range tags {
		if _, ok := used[t.Key]; !ok {
			rest = append(rest, t)
		}
	}
	if len(rest) > 0 {
		secs = append(secs, TagSection{Name: l.Leftover.Other, Values: rest})
	}
	return append(groups, TagGroup{Name: l.Leftover.Name, Sections: secs})
}
