package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

// countingEmbedder returns a vector whose only element is the text length.
type countingEmbedder struct {
	mu    sync.Mutex
	calls int
	seen  []string
	err   error
	short bool
}

func (f *countingEmbedder) Embed(_ domain.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.seen = append(f.seen, texts...)
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short {
		n--
	}
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func TestNewCache_Passthrough(t *testing.T) {
	base := &countingEmbedder{}
	assert.Same(t, base, NewCache(base, 0).(*countingEmbedder))
	assert.Nil(t, NewCache(nil, 8))
}

func TestCache_HitsSkipBase(t *testing.T) {
	base := &countingEmbedder{}
	c := NewCache(base, 8)
	ctx := context.Background()

	first, err := c.Embed(ctx, []string{"hello", "world!"})
	require.NoError(t, err)
	second, err := c.Embed(ctx, []string{"hello", "world!"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, base.calls)
}

func TestCache_OnlyMissesReachBase(t *testing.T) {
	base := &countingEmbedder{}
	c := NewCache(base, 8)
	ctx := context.Background()

	_, err := c.Embed(ctx, []string{"a"})
	require.NoError(t, err)
	out, err := c.Embed(ctx, []string{"a", "bbb", "  a  "})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{1}, {3}, {1}}, out)
	assert.Equal(t, []string{"a", "bbb"}, base.seen)
}

func TestCache_FIFOEviction(t *testing.T) {
	base := &countingEmbedder{}
	c := NewCache(base, 2)
	ctx := context.Background()

	for _, s := range []string{"a", "b", "c"} {
		_, err := c.Embed(ctx, []string{s})
		require.NoError(t, err)
	}
	_, err := c.Embed(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 4, base.calls)

	_, err = c.Embed(ctx, []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, 4, base.calls)
}

func TestCache_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewCache(&countingEmbedder{err: boom}, 4).Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, boom)

	_, err = NewCache(&countingEmbedder{short: true}, 4).Embed(context.Background(), []string{"x", "y"})
	assert.ErrorIs(t, err, domain.ErrComputation)
}
