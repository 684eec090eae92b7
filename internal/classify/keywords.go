package classify

import "strings"

// keywordSet accumulates keywords lowercase, first occurrence wins, capped at
// a fixed size. Insertion order is preserved in Slice.
type keywordSet struct {
	seen map[string]bool
	list []string
	cap  int
}

func newKeywordSet(cap int) *keywordSet {
	return &keywordSet{seen: make(map[string]bool), cap: cap}
}

func (k *keywordSet) add(words ...string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || k.seen[w] {
			continue
		}
		if len(k.list) >= k.cap {
			return
		}
		k.seen[w] = true
		k.list = append(k.list, w)
	}
}

func (k *keywordSet) slice() []string {
	return k.list
}

// buildKeywords assembles the keyword list in a fixed precedence: each matched
// rule contributes its tag and aliases in match order, then the category names
// of the matches, then the country plus its "<country> military" variant, then
// any surfaced markings. The set is lowercase, deduplicated on first occurrence
// and capped.
func buildKeywords(matches []equipmentMatch, country string, markings []string, cap int) []string {
	ks := newKeywordSet(cap)
	for i := range matches {
		ks.add(matches[i].Rule.Tag)
		ks.add(matches[i].Rule.Aliases...)
	}
	for i := range matches {
		ks.add(string(matches[i].Rule.Category))
	}
	if country != "" {
		ks.add(country, country+" military")
	}
	ks.add(markings...)
	return ks.slice()
}
