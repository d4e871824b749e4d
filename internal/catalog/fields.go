package catalog

import "github.com/tbourn/go-waiter-catalog/internal/search"

// SearchKeys is the ordered list of fields the text matcher searches. Earlier
// keys rank higher; nested fields use dotted paths.
var SearchKeys = []string{
	"title",
	"menu",
	"section",
	"description",
	"contains",
	"features",
	"status",
	"source_file",
	"ingredients",
	"allergens",
	"pairings.wines",
	"pairings.drinks",
	"pairings.dishes",
	"pairings.notes",
	"tags",
	"i18n.en.title-en",
	"i18n.en.description-en",
}

// Record flattens the searchable fields of e.
func Record(e *Entry) search.Record {
	r := search.Record{}
	r.Add("title", e.Title)
	r.Add("menu", e.Category)
	r.Add("section", e.Section)
	r.Add("description", e.Description)
	r.Add("contains", e.Contains)
	r.Add("features", e.Features...)
	r.Add("status", e.Status)
	r.Add("source_file", e.SourceFile)
	r.Add("ingredients", e.Ingredients...)
	r.Add("allergens", e.Allergens...)
	r.Add("pairings.wines", e.Pairings.Wines...)
	r.Add("pairings.drinks", e.Pairings.Drinks...)
	r.Add("pairings.dishes", e.Pairings.Dishes...)
	r.Add("pairings.notes", e.Pairings.Notes...)
	r.Add("tags", e.Tags...)
	if e.I18n != nil && e.I18n.EN != nil {
		r.Add("i18n.en.title-en", e.I18n.EN.Title)
		r.Add("i18n.en.description-en", e.I18n.EN.Description)
	}
	return r
}

// NewMatcher indexes entries over SearchKeys. Hit positions refer to entries.
func NewMatcher(entries []Entry, opts ...search.Option) search.Matcher {
	recs := make([]search.Record, len(entries))
	for i := range entries {
		recs[i] = Record(&entries[i])
	}
	o := append([]search.Option{search.WithKeys(SearchKeys...)}, opts...)
	return search.NewIndex(recs, o...)
}
