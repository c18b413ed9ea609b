package matching

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	"github.com/fairyhunter13/cv-job-matcher/internal/observability"
)

// Similarity is the optional semantic capability.
// Implementations never fail: any problem is reported as 0.
type Similarity interface {
	// Similarity returns meaning-level closeness of a and b in [0,1].
	Similarity(ctx context.Context, a, b string) float64
	// Available reports whether a backend is wired in.
	Available() bool
}

// NewSimilarity picks the embedding-backed capability when embedder is
// non-nil and the null object otherwise. Call it once at startup.
func NewSimilarity(embedder domain.Embedder) Similarity {
	if embedder == nil {
		return NullSimilarity{}
	}
	return &EmbeddingSimilarity{embedder: embedder}
}

// NullSimilarity stands in when no embedding backend could be constructed.
// The composite score is biased downward rather than reweighted.
type NullSimilarity struct{}

// Similarity always returns 0.
func (NullSimilarity) Similarity(context.Context, string, string) float64 { return 0 }

// Available always returns false.
func (NullSimilarity) Available() bool { return false }

// EmbeddingSimilarity computes cosine similarity of two embeddings.
type EmbeddingSimilarity struct {
	embedder domain.Embedder
}

// Available reports true; construction already proved the backend exists.
func (s *EmbeddingSimilarity) Available() bool { return true }

// Similarity embeds both texts in one call and returns their cosine clamped to [0,1].
func (s *EmbeddingSimilarity) Similarity(ctx context.Context, a, b string) (score float64) {
	lg := observability.LoggerFromContext(ctx)
	defer func() {
		if rec := recover(); rec != nil {
			lg.Warn("semantic similarity panicked", slog.Any("recover", rec))
			score = 0
		}
	}()
	vecs, err := s.embedder.Embed(ctx, []string{a, b})
	if err != nil {
		lg.Warn("semantic similarity unavailable for request", slog.Any("error", err))
		return 0
	}
	if len(vecs) != 2 {
		lg.Warn("semantic similarity got unexpected vector count", slog.Int("count", len(vecs)))
		return 0
	}
	cos, err := Cosine(vecs[0], vecs[1])
	if err != nil {
		lg.Warn("semantic similarity cosine failed", slog.Any("error", err))
		return 0
	}
	return clamp01(cos)
}

// Cosine returns the cosine similarity of a and b.
// Mismatched lengths, empty and zero vectors are computation errors.
func Cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("%w: vector length %d vs %d", domain.ErrComputation, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("%w: zero vector", domain.ErrComputation)
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(cos) || math.IsInf(cos, 0) {
		return 0, fmt.Errorf("%w: non-finite cosine", domain.ErrComputation)
	}
	return cos, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
