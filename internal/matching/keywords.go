package matching

import (
	"sort"
)

// DefaultMissingKeywords is how many missing keywords callers get by default.
const DefaultMissingKeywords = 10

// MissingKeywords lists job words absent from the CV. Only alphabetic words
// longer than three letters are kept; the list is sorted and capped at limit
// (limit <= 0 means DefaultMissingKeywords).
func (n *Normalizer) MissingKeywords(cvText, jobText string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMissingKeywords
	}
	cv := n.ExtractWords(cvText)
	out := make([]string, 0)
	for w := range n.ExtractWords(jobText) {
		if len(w) <= 3 || !isAlpha(w) {
			continue
		}
		if _, ok := cv[w]; ok {
			continue
		}
		out = append(out, w)
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func isAlpha(w string) bool {
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}
