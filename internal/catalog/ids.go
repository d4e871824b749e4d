package catalog

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/tbourn/go-waiter-catalog/internal/textnorm"
)

// GenerateID derives a slug id from menu and title, e.g. "bar-negroni".
// taken reports ids already in use; a numeric suffix is added until the id is
// free. Titles without letters or digits get a random "item-" id.
func GenerateID(menu, title string, taken func(string) bool) string {
	base := slug(textnorm.Key(menu + "-" + title))
	if base == "" {
		base = "item-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	if taken == nil {
		return base
	}
	id := base
	for n := 1; taken(id); n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// AssignIDs fills blank ids in place with generated ones that do not clash
// with existing ids.
func AssignIDs(entries []Entry) {
	used := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ID != "" {
			used[e.ID] = struct{}{}
		}
	}
	taken := func(id string) bool { _, ok := used[id]; return ok }
	for i := range entries {
		if entries[i].ID != "" {
			continue
		}
		id := GenerateID(entries[i].Category, entries[i].Title, taken)
		used[id] = struct{}{}
		entries[i].ID = id
	}
}
