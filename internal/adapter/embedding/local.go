package embedding

import (
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	"github.com/fairyhunter13/cv-job-matcher/internal/matching"
)

// DefaultLocalDims is the vector width used when none is configured.
const DefaultLocalDims = 512

// LocalEmbedder produces deterministic bag-of-words vectors with the hashing
// trick. Words are normalized, stopwords dropped and known skill synonyms
// folded to one canonical token, so "JS" and "javascript" land in the same
// bucket. Adjacent word pairs are hashed too, giving some phrase sensitivity.
type LocalEmbedder struct {
	dims       int
	normalizer *matching.Normalizer
}

// NewLocalEmbedder returns an embedder of the given width. A nil normalizer
// uses the default tables.
func NewLocalEmbedder(dims int, normalizer *matching.Normalizer) *LocalEmbedder {
	if dims <= 0 {
		dims = DefaultLocalDims
	}
	if normalizer == nil {
		normalizer = matching.NewNormalizer(nil)
	}
	return &LocalEmbedder{dims: dims, normalizer: normalizer}
}

// Dims is the vector width.
func (e *LocalEmbedder) Dims() int { return e.dims }

// Embed never fails. Text without any content word yields a zero vector.
func (e *LocalEmbedder) Embed(_ domain.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *LocalEmbedder) vector(text string) []float32 {
	counts := make(map[string]int)
	var prev string
	for _, w := range strings.Fields(e.normalizer.Normalize(text)) {
		if e.normalizer.IsStopword(w) {
			prev = ""
			continue
		}
		tok := e.normalizer.NormalizeSkill(w)
		counts[tok]++
		if prev != "" {
			counts[prev+" "+tok]++
		}
		prev = tok
	}

	acc := make([]float64, e.dims)
	for tok, n := range counts {
		h := xxhash.Sum64String(tok)
		idx := int(h % uint64(e.dims))
		// Sublinear term frequency keeps repeated filler from dominating.
		w := 1 + math.Log(float64(n))
		if h>>63 == 1 {
			w = -w
		}
		acc[idx] += w
	}

	var norm float64
	for _, x := range acc {
		norm += x * x
	}
	v := make([]float32, e.dims)
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i, x := range acc {
		v[i] = float32(x / norm)
	}
	return v
}
