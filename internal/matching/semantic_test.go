package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

type stubEmbedder struct {
	vecs  [][]float32
	err   error
	panic bool
	calls int
}

func (s *stubEmbedder) Embed(_ domain.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.panic {
		panic("backend exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.vecs, nil
}

func TestNewSimilarity_NullWhenNoEmbedder(t *testing.T) {
	t.Parallel()

	s := NewSimilarity(nil)
	assert.IsType(t, NullSimilarity{}, s)
	assert.False(t, s.Available())
	assert.Zero(t, s.Similarity(context.Background(), "a", "a"))
}

func TestEmbeddingSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		emb  *stubEmbedder
		want float64
	}{
		{"identical vectors", &stubEmbedder{vecs: [][]float32{{1, 2, 3}, {1, 2, 3}}}, 1},
		{"orthogonal vectors", &stubEmbedder{vecs: [][]float32{{1, 0}, {0, 1}}}, 0},
		{"negative cosine clamps to zero", &stubEmbedder{vecs: [][]float32{{1, 0}, {-1, 0}}}, 0},
		{"embed error", &stubEmbedder{err: errors.New("boom")}, 0},
		{"wrong vector count", &stubEmbedder{vecs: [][]float32{{1, 0}}}, 0},
		{"length mismatch", &stubEmbedder{vecs: [][]float32{{1, 0}, {1, 0, 0}}}, 0},
		{"zero vector", &stubEmbedder{vecs: [][]float32{{0, 0}, {1, 0}}}, 0},
		{"panicking backend", &stubEmbedder{panic: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSimilarity(tt.emb)
			require.True(t, s.Available())
			assert.InDelta(t, tt.want, s.Similarity(context.Background(), "cv", "job"), 1e-9)
			assert.Equal(t, 1, tt.emb.calls, "both texts must be embedded in one call")
		})
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()

	got, err := Cosine([]float32{3, 4}, []float32{4, 3})
	require.NoError(t, err)
	assert.InDelta(t, 0.96, got, 1e-9)

	_, err = Cosine(nil, nil)
	assert.ErrorIs(t, err, domain.ErrComputation)
	_, err = Cosine([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, domain.ErrComputation)
	_, err = Cosine([]float32{0, 0}, []float32{0, 0})
	assert.ErrorIs(t, err, domain.ErrComputation)
}
