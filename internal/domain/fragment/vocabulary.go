package fragment

import (
	"sort"
)

// Vocabulary is a set of fragment identities that remembers insertion order.
// It only grows.
type Vocabulary struct {
	items []string
	index map[string]struct{}
}

// NewVocabulary returns an empty vocabulary, optionally seeded with items.
func NewVocabulary(items ...string) *Vocabulary {
	v := &Vocabulary{index: make(map[string]struct{}, len(items))}
	v.AddAll(items...)
	return v
}

// Add inserts s and reports whether it was new.
func (v *Vocabulary) Add(s string) bool {
	if v.index == nil {
		v.index = make(map[string]struct{})
	}
	if _, ok := v.index[s]; ok {
		return false
	}
	v.index[s] = struct{}{}
	v.items = append(v.items, s)
	return true
}

// AddAll inserts every item and returns the number of new ones.
func (v *Vocabulary) AddAll(items ...string) int {
	n := 0
	for _, s := range items {
		if v.Add(s) {
			n++
		}
	}
	return n
}

// Merge adds every item of o, in o's insertion order, and returns the number
// of new ones.
func (v *Vocabulary) Merge(o *Vocabulary) int {
	if o == nil {
		return 0
	}
	return v.AddAll(o.items...)
}

// Contains reports whether s is present.
func (v *Vocabulary) Contains(s string) bool {
	_, ok := v.index[s]
	return ok
}

// Len returns the number of distinct items.
func (v *Vocabulary) Len() int { return len(v.items) }

// Items returns a copy of the items in insertion order.
func (v *Vocabulary) Items() []string {
	return append([]string(nil), v.items...)
}

// Sorted returns a sorted copy of the items.
func (v *Vocabulary) Sorted() []string {
	out := v.Items()
	sort.Strings(out)
	return out
}
