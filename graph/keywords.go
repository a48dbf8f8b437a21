package graph

import (
	"slices"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "all": {}, "also": {}, "and": {}, "any": {},
	"are": {}, "been": {}, "but": {}, "can": {}, "could": {}, "for": {},
	"from": {}, "had": {}, "has": {}, "have": {}, "her": {}, "his": {},
	"how": {}, "into": {}, "its": {}, "just": {}, "more": {}, "most": {},
	"not": {}, "one": {}, "only": {}, "other": {}, "out": {}, "over": {},
	"some": {}, "such": {}, "than": {}, "that": {}, "the": {}, "their": {},
	"them": {}, "then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"was": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "who": {}, "will": {}, "with": {}, "would": {}, "you": {},
	"your": {},
}

// Terms returns the top most frequent stemmed keywords of text, skipping
// stopwords and words shorter than 3 runes. Frequency ties keep the order of
// first appearance.
func Terms(text string, top int) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	freq := make(map[string]int)
	var order []string
	for _, w := range words {
		if len([]rune(w)) < 3 {
			continue
		}

		if _, ok := stopwords[w]; ok {
			continue
		}

		stem, err := snowball.Stem(w, "english", true)
		if err != nil {
			stem = w
		}

		if _, seen := freq[stem]; !seen {
			order = append(order, stem)
		}
		freq[stem]++
	}

	slices.SortStableFunc(order, func(a, b string) int { return freq[b] - freq[a] })
	if top >= 0 && len(order) > top {
		order = order[:top]
	}

	return order
}
