package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_Decode(t *testing.T) {
	cases := []struct {
		in   string
		want StringList
	}{
		{`null`, nil},
		{`"nuts"`, StringList{"nuts"}},
		{`"  "`, StringList{}},
		{`[" a ", 1, null, "", "b"]`, StringList{"a", "b"}},
		{`{}`, StringList{}},
	}
	for _, tc := range cases {
		var got StringList
		require.NoError(t, json.Unmarshal([]byte(tc.in), &got), tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	var bad StringList
	assert.Error(t, bad.UnmarshalJSON([]byte(`[`)))
}

func TestCSVList_Decode(t *testing.T) {
	var l CSVList
	require.NoError(t, json.Unmarshal([]byte(`"nuts, gluten\nsesame,,"`), &l))
	assert.Equal(t, CSVList{"nuts", "gluten", "sesame"}, l)

	require.NoError(t, json.Unmarshal([]byte(`["a", " b "]`), &l))
	assert.Equal(t, CSVList{"a", "b"}, l)
}

func TestEntry_DecodeDocument(t *testing.T) {
	doc := `{
		"id": "bar-negroni",
		"title": "Negroni",
		"menu": "Барная карта",
		"section": "Классика",
		"allergens": "цитрусы",
		"tags": ["водка", 5],
		"pairings": {"dishes": "Olives", "wines": null},
		"i18n": {"en": {"title-en": "Negroni", "allergens-en": "citrus, sugar"}},
		"updated_at": "2025-01-01T00:00:00Z",
		"unknown": true
	}`
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(doc), &e))
	assert.Equal(t, "Барная карта", e.Category)
	assert.Equal(t, StringList{"цитрусы"}, e.Allergens)
	assert.Equal(t, StringList{"водка"}, e.Tags)
	assert.Equal(t, StringList{"Olives"}, e.Pairings.Dishes)
	assert.Nil(t, e.Pairings.Wines)
	require.NotNil(t, e.I18n)
	assert.Equal(t, CSVList{"citrus", "sugar"}, e.I18n.EN.Allergens)
}

func TestEntry_CloneIsDeep(t *testing.T) {
	e := Entry{
		ID:        "1",
		Tags:      StringList{"a"},
		Allergens: StringList{"nuts"},
		Pairings:  Pairings{Wines: StringList{"w"}, Notes: StringList{"n"}},
		I18n:      &I18n{EN: &Translation{Title: "T", Tags: CSVList{"x"}}},
	}
	c := e.Clone()
	c.Tags[0] = "changed"
	c.Allergens[0] = "changed"
	c.Pairings.Wines[0] = "changed"
	c.Pairings.Notes[0] = "changed"
	c.I18n.EN.Title = "changed"
	c.I18n.EN.Tags[0] = "changed"

	assert.Equal(t, "a", e.Tags[0])
	assert.Equal(t, "nuts", e.Allergens[0])
	assert.Equal(t, "w", e.Pairings.Wines[0])
	assert.Equal(t, "n", e.Pairings.Notes[0])
	assert.Equal(t, "T", e.I18n.EN.Title)
	assert.Equal(t, "x", e.I18n.EN.Tags[0])
}

func TestPairings_CloneFillsMissingLists(t *testing.T) {
	p := Pairings{}.Clone()
	assert.Equal(t, StringList{}, p.Wines)
	assert.Equal(t, StringList{}, p.Drinks)
	assert.Equal(t, StringList{}, p.Dishes)
	assert.Nil(t, p.Notes)
}

func TestEntry_English(t *testing.T) {
	_, ok := Entry{Title: "Борщ"}.English()
	assert.False(t, ok)

	_, ok = Entry{I18n: &I18n{EN: &Translation{}}}.English()
	assert.False(t, ok)

	src := Entry{
		ID:         "soup-borsch",
		Title:      "Борщ",
		SourceFile: "kitchen.md",
		Tags:       StringList{"сытное блюдо"},
		I18n: &I18n{EN: &Translation{
			Title:     " Borscht ",
			Category:  "Kitchen",
			Allergens: CSVList{"celery"},
		}},
	}
	en, ok := src.English()
	require.True(t, ok)
	assert.Equal(t, "soup-borsch", en.ID)
	assert.Equal(t, "Borscht", en.Title)
	assert.Equal(t, "Kitchen", en.Category)
	assert.Equal(t, StringList{"celery"}, en.Allergens)
	assert.Nil(t, en.Tags)
	assert.Equal(t, "kitchen.md", en.SourceFile)
	assert.Equal(t, StringList{}, en.Pairings.Dishes)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList(" a ,b\r\n c,"))
	assert.Empty(t, SplitList(""))
}
