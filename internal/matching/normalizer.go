package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reDisallowed = regexp.MustCompile(`[^a-z0-9\s_-]`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, folds accents and keeps only [a-z0-9 _-].
// Whitespace runs collapse to a single space. Normalize is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, strings.ToLower(text))
	// transform.Chain is stateful, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = reDisallowed.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Normalizer turns documents into comparable word sets.
type Normalizer struct {
	tables *Tables
}

// NewNormalizer returns a Normalizer bound to t, or to the defaults when t is nil.
func NewNormalizer(t *Tables) *Normalizer {
	if t == nil {
		t = DefaultTables()
	}
	return &Normalizer{tables: t}
}

// Normalize is the method form of the package-level Normalize.
func (n *Normalizer) Normalize(text string) string { return Normalize(text) }

// ExtractWords splits normalized text into a set of words minus stopwords.
// Input that was not normalized yet is normalized first.
func (n *Normalizer) ExtractWords(normalized string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(normalized)) {
		if n.IsStopword(w) {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}

// IsStopword reports whether the normalized word w is a stopword in any language.
func (n *Normalizer) IsStopword(w string) bool {
	_, ok := n.tables.Stopwords[w]
	return ok
}

// NormalizeSkill maps a raw skill mention to its canonical name.
// The lowercase surface form is tried first so entries such as "c#" and
// "node.js" resolve before punctuation is stripped. Unmapped tokens come
// back normalized.
func (n *Normalizer) NormalizeSkill(token string) string {
	raw := strings.ToLower(strings.TrimSpace(token))
	if v, ok := n.tables.Synonyms[raw]; ok {
		return v
	}
	normalized := Normalize(token)
	if v, ok := n.tables.Synonyms[normalized]; ok {
		return v
	}
	return normalized
}
