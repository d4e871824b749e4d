package catalog

import "github.com/tbourn/go-waiter-catalog/internal/textnorm"

type bucket uint8

const (
	bucketWines bucket = iota
	bucketDrinks
	bucketDishes
	numBuckets
)

func (p *Pairings) list(b bucket) *StringList {
	switch b {
	case bucketWines:
		return &p.Wines
	case bucketDrinks:
		return &p.Drinks
	default:
		return &p.Dishes
	}
}

// keySets tracks the normalized titles already present in each pairing list
// of one entry.
type keySets [numBuckets]map[string]struct{}

func newKeySets(p *Pairings) keySets {
	var ks keySets
	for b := bucket(0); b < numBuckets; b++ {
		l := *p.list(b)
		ks[b] = make(map[string]struct{}, len(l))
		for _, v := range l {
			if k := textnorm.Key(v); k != "" {
				ks[b][k] = struct{}{}
			}
		}
	}
	return ks
}

// Enrich returns a deep copy of entries whose pairing lists are closed under
// symmetry. When A lists B under wines or drinks, B.dishes gets A's title.
// When A lists B under dishes, B gets A's title in the list matching A's kind.
// References are matched by normalized title and every entry sharing that
// title receives the back-reference. Unmatched references are ignored.
//
// Passes repeat until nothing is added, so Enrich(Enrich(x)) equals
// Enrich(x). Lists only grow and are bounded by the distinct titles in the
// collection, so this terminates. The input is never modified.
func Enrich(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}

	kinds := make([]Kind, len(out))
	sets := make([]keySets, len(out))
	byTitle := make(map[string][]int, len(out))
	for i := range out {
		kinds[i] = Classify(&out[i])
		sets[i] = newKeySets(&out[i].Pairings)
		if k := textnorm.Key(out[i].Title); k != "" {
			byTitle[k] = append(byTitle[k], i)
		}
	}

	for {
		added := 0
		for a := range out {
			title := out[a].Title
			if textnorm.Key(title) == "" {
				continue
			}
			for b := bucket(0); b < numBuckets; b++ {
				dest := bucketDishes
				if b == bucketDishes {
					dest = kinds[a].bucket()
				}
				refs := *out[a].Pairings.list(b)
				for _, ref := range refs {
					for _, t := range byTitle[textnorm.Key(ref)] {
						if addUnique(&out[t].Pairings, &sets[t], dest, title) {
							added++
						}
					}
				}
			}
		}
		if added == 0 {
			return out
		}
	}
}

// addUnique appends title to the dest list unless an equal normalized title
// is already there.
func addUnique(p *Pairings, ks *keySets, dest bucket, title string) bool {
	k := textnorm.Key(title)
	if k == "" {
		return false
	}
	if _, ok := ks[dest][k]; ok {
		return false
	}
	ks[dest][k] = struct{}{}
	l := p.list(dest)
	*l = append(*l, title)
	return true
}
