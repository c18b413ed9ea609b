package matching

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var normalizedShape = regexp.MustCompile(`^[a-z0-9_-]*( [a-z0-9_-]+)*$`)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercase and punctuation", "Hello, World!", "hello world"},
		{"accents folded", "Héllo Wörld Åre", "hello world are"},
		{"swedish word", "Sjuksköterska", "sjukskoterska"},
		{"symbols stripped", "C++ & C#", "c c"},
		{"dots stripped", "node.js", "nodejs"},
		{"whitespace collapsed", "  multi\n\tline   text  ", "multi line text"},
		{"hyphen and underscore kept", "data_science - problem-solving", "data_science - problem-solving"},
		{"non-breaking space splits words", "patient\u00a0care", "patient care"},
		{"only symbols", "!!! ???", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_IdempotentAndASCII(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Senior Go Developer — 5+ years (Kubernetes, AWS)",
		"Sjuksköterska med 8 års erfarenhet på akuten",
		"  ÜBER   naïve café\r\n",
		"résumé: C#/.NET, Node.js & React.js",
		"日本語 text mixed",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
		assert.Regexp(t, normalizedShape, once)
	}
}

func TestNormalizer_ExtractWords(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)

	words := n.ExtractWords("the quick and the dead")
	assert.Equal(t, map[string]struct{}{"quick": {}, "dead": {}}, words)

	// Swedish stopwords are compared after accent folding ("på" -> "pa").
	words = n.ExtractWords(Normalize("Jobbar på kontoret och hemma"))
	assert.Equal(t, map[string]struct{}{"jobbar": {}, "kontoret": {}, "hemma": {}}, words)

	assert.Empty(t, n.ExtractWords(""))
	assert.Empty(t, n.ExtractWords("the and of"))
}

func TestNormalizer_NormalizeSkill(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)

	tests := []struct {
		in   string
		want string
	}{
		{"C#", "csharp"},
		{"c++", "cpp"},
		{"React.js", "react"},
		{"Node.js", "nodejs"},
		{"node", "nodejs"},
		{"JavaScript", "js"},
		{"PostgreSQL", "postgres"},
		{"  Machine   Learning ", "ml"},
		{"Sjuksköterska", "nurse"},
		{"Kubernetes", "kubernetes"},
		{"Terraform!", "terraform"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.NormalizeSkill(tt.in))
		})
	}
}

func TestNormalizer_IsStopword(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	assert.True(t, n.IsStopword("the"))
	assert.True(t, n.IsStopword("och"))
	assert.True(t, n.IsStopword("pa"))
	assert.False(t, n.IsStopword("python"))
}
