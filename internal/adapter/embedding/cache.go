package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

// memoryCache wraps an Embedder and caches vectors by text hash with FIFO
// eviction. It is safe for concurrent use.
type memoryCache struct {
	base     domain.Embedder
	capacity int
	mu       sync.RWMutex
	m        map[string][]float32
	ord      []string
}

// NewCache wraps base with an in-process cache of capacity entries.
// If capacity <= 0, base is returned unmodified.
func NewCache(base domain.Embedder, capacity int) domain.Embedder {
	if capacity <= 0 || base == nil {
		return base
	}
	return &memoryCache{base: base, capacity: capacity, m: make(map[string][]float32), ord: make([]string, 0, capacity)}
}

func (c *memoryCache) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	res := make([][]float32, len(texts))
	missIdx := make([]int, 0)
	missTexts := make([]string, 0)
	for i, t := range texts {
		c.mu.RLock()
		v, ok := c.m[keyFor(t)]
		c.mu.RUnlock()
		observability.RecordEmbedCache("memory", ok)
		if ok {
			res[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missIdx) == 0 {
		return res, nil
	}
	vecs, err := c.base.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, errVectorCount(len(vecs), len(missTexts))
	}
	for j, idx := range missIdx {
		res[idx] = vecs[j]
		c.put(missTexts[j], vecs[j])
	}
	return res, nil
}

func (c *memoryCache) put(text string, vec []float32) {
	k := keyFor(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[k]; exists {
		c.m[k] = vec
		return
	}
	if len(c.ord) >= c.capacity {
		old := c.ord[0]
		c.ord = c.ord[1:]
		delete(c.m, old)
	}
	c.m[k] = vec
	c.ord = append(c.ord, k)
}

func keyFor(text string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(h[:])
}
