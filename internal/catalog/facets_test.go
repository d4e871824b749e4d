package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func labels(vals []FacetValue) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Label
	}
	return out
}

func TestBuildFacets_CollapsesByKeyFirstLabelWins(t *testing.T) {
	entries := []Entry{
		{ID: "1", Category: "  Бар ", Allergens: StringList{"Орехи", "орехи"}},
		{ID: "2", Category: "бар", Allergens: StringList{"ОРЕХИ"}},
		{ID: "3", Category: "Закуски"},
	}
	fi, _ := NewFacetBuilder(language.Russian).Build(entries, FilterState{})

	require.Len(t, fi.Categories, 2)
	assert.Equal(t, FacetValue{Key: "бар", Label: "Бар", Count: 2}, fi.Categories[0])
	assert.Equal(t, FacetValue{Key: "закуски", Label: "Закуски", Count: 1}, fi.Categories[1])

	require.Len(t, fi.Allergens, 1)
	assert.Equal(t, "Орехи", fi.Allergens[0].Label)
	assert.Equal(t, 2, fi.Allergens[0].Count, "counted once per entry")
}

func TestBuildFacets_LocaleOrder(t *testing.T) {
	entries := []Entry{
		{Category: "Вина"}, {Category: "закуски"}, {Category: "Алкоголь"}, {Category: "бар"}, {Category: "Яблоки"},
	}
	fi, _ := NewFacetBuilder(language.Russian).Build(entries, FilterState{})
	// Byte order would put every capitalized label first.
	assert.Equal(t, []string{"Алкоголь", "бар", "Вина", "закуски", "Яблоки"}, labels(fi.Categories))
}

func TestBuildFacets_AllergenPriorityThenCollation(t *testing.T) {
	entries := []Entry{
		{Allergens: StringList{"сельдерей", "кунжут", "Nuts"}},
		{Allergens: StringList{"арахис", "орехи", "глютен"}},
	}
	fi, _ := NewFacetBuilder(language.Russian).Build(entries, FilterState{})
	assert.Equal(t, []string{"орехи", "глютен", "кунжут", "Nuts", "арахис", "сельдерей"}, labels(fi.Allergens))
}

func TestBuildFacets_NoPriorityFallsBackToCollation(t *testing.T) {
	entries := []Entry{{Allergens: StringList{"орехи", "арахис"}}}
	fi, _ := FacetBuilder{Locale: language.Russian}.Build(entries, FilterState{})
	assert.Equal(t, []string{"арахис", "орехи"}, labels(fi.Allergens))
	assert.Nil(t, fi.TagGroups)
}

func TestBuildFacets_PrunesStaleSelections(t *testing.T) {
	entries := []Entry{
		{Category: "Кухня", Allergens: StringList{"nuts"}, Tags: StringList{"острое"}},
	}
	st := FilterState{
		Query:      "keep me",
		Categories: NewSelection("Бар"),
		Allergens:  NewSelection("nuts", "shellfish"),
		Tags:       NewSelection("Острое"),
	}

	fi, pruned := NewFacetBuilder(language.Russian).Build(entries, st)

	assert.Equal(t, "keep me", pruned.Query)
	assert.Equal(t, 0, pruned.Categories.Len())
	assert.Equal(t, []string{"nuts"}, pruned.Allergens.Values())
	assert.False(t, pruned.Allergens.Has("shellfish"))
	assert.Equal(t, []string{"острое"}, pruned.Tags.Values())

	assert.True(t, fi.Allergens[0].Selected)
	assert.False(t, fi.Categories[0].Selected)
	assert.True(t, fi.Tags[0].Selected)

	// Input state is untouched.
	assert.True(t, st.Allergens.Has("shellfish"))
	assert.True(t, st.Categories.Has("бар"))
}

func TestTagLayout_Arrange(t *testing.T) {
	entries := []Entry{
		{Tags: StringList{"без глютена", "Водка", "к вину", "странный", "Malbec"}},
	}
	fi, _ := NewFacetBuilder(language.Russian).Build(entries, FilterState{Tags: NewSelection("водка")})

	require.Len(t, fi.TagGroups, 3)

	g0 := fi.TagGroups[0]
	assert.Equal(t, "Особенности блюда", g0.Name)
	require.Len(t, g0.Sections, 2)
	assert.Equal(t, "Ограничения", g0.Sections[0].Name)
	assert.Equal(t, []string{"без глютена"}, labels(g0.Sections[0].Values))
	assert.Equal(t, "Фудпэринг", g0.Sections[1].Name)

	g1 := fi.TagGroups[1]
	assert.Equal(t, "Вина", g1.Name)
	require.Len(t, g1.Sections, 1)
	assert.Equal(t, "Сорта винограда", g1.Sections[0].Name)

	g2 := fi.TagGroups[2]
	assert.Equal(t, "Коктейли", g2.Name)
	require.Len(t, g2.Sections, 2)
	assert.Equal(t, "База", g2.Sections[0].Name)
	assert.Equal(t, []string{"Водка"}, labels(g2.Sections[0].Values))
	assert.True(t, g2.Sections[0].Values[0].Selected)
	assert.Equal(t, "Прочее", g2.Sections[1].Name)
	assert.Equal(t, []string{"странный"}, labels(g2.Sections[1].Values))
}

func TestTagLayout_EachTagPlacedOnce(t *testing.T) {
	l, err := ParseTagLayout([]byte(`
groups:
  - name: A
    sections:
      - name: one
        tags: [x, X, y]
      - name: two
        tags: [y, z]
leftover:
  name: Rest
  other: Misc
`))
	require.NoError(t, err)

	got := l.Arrange([]FacetValue{{Key: "x", Label: "x"}, {Key: "y", Label: "y"}, {Key: "z", Label: "z"}, {Key: "w", Label: "w"}})
	require.Len(t, got, 2)
	assert.Equal(t, []string{"x", "y"}, labels(got[0].Sections[0].Values))
	assert.Equal(t, []string{"z"}, labels(got[0].Sections[1].Values))
	assert.Equal(t, TagGroup{Name: "Rest", Sections: []TagSection{{Name: "Misc", Values: []FacetValue{{Key: "w", Label: "w"}}}}}, got[1])

	assert.Nil(t, l.Arrange(nil))
}

func TestParseTagLayout_Errors(t *testing.T) {
	_, err := ParseTagLayout([]byte("groups: [ {name: ''} ]"))
	assert.Error(t, err)

	_, err = ParseTagLayout([]byte("groups: {"))
	assert.Error(t, err)

	l, err := ParseTagLayout([]byte("groups: []"))
	require.NoError(t, err)
	assert.Equal(t, "Other", l.Leftover.Name)
	assert.Equal(t, "Other", l.Leftover.Other)
}

func TestLoadTagLayout(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "layout.yaml")
	require.NoError(t, os.WriteFile(p, []byte("groups:\n  - name: G\n    sections:\n      - name: S\n        tags: [a]\n"), 0o600))

	l, err := LoadTagLayout(p)
	require.NoError(t, err)
	require.Len(t, l.Groups, 1)
	assert.Equal(t, []string{"a"}, l.Groups[0].Sections[0].Tags)

	_, err = LoadTagLayout(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultTagLayout_Parses(t *testing.T) {
	l := DefaultTagLayout()
	require.Len(t, l.Groups, 2)
	assert.Equal(t, "Коктейли", l.Leftover.Name)
	assert.Equal(t, "Прочее", l.Leftover.Other)
}
