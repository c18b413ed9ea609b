package embedding

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	obsctx "github.com/fairyhunter13/cv-job-matcher/internal/observability"
)

// redisCache shares vectors between replicas. Redis failures are logged and
// the call falls through to the wrapped embedder.
type redisCache struct {
	base   domain.Embedder
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache wraps base with a Redis-backed cache. namespace separates
// vectors of different models. A nil client returns base unmodified.
func NewRedisCache(base domain.Embedder, rdb *redis.Client, namespace string, ttl time.Duration) domain.Embedder {
	if rdb == nil || base == nil {
		return base
	}
	return &redisCache{base: base, rdb: rdb, ttl: ttl, prefix: "emb:" + namespace + ":"}
}

func (c *redisCache) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return c.base.Embed(ctx, texts)
	}
	lg := obsctx.LoggerFromContext(ctx)
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.prefix + keyFor(t)
	}

	res := make([][]float32, len(texts))
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		lg.Warn("embedding cache read failed", slog.Any("error", err))
		vals = nil
	}
	missIdx := make([]int, 0)
	missTexts := make([]string, 0)
	for i := range texts {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				if v, ok := decodeVector([]byte(s)); ok {
					res[i] = v
					observability.RecordEmbedCache("redis", true)
					continue
				}
			}
		}
		observability.RecordEmbedCache("redis", false)
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
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
	pipe := c.rdb.Pipeline()
	for j, idx := range missIdx {
		res[idx] = vecs[j]
		pipe.Set(ctx, keys[idx], encodeVector(vecs[j]), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		lg.Warn("embedding cache write failed", slog.Any("error", err))
	}
	return res, nil
}

// encodeVector stores float32 values little-endian.
func encodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(x))
	}
	return b
}

func decodeVector(b []byte) ([]float32, bool) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, false
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, true
}

func errVectorCount(got, want int) error {
	return fmt.Errorf("%w: got %d vectors for %d inputs", domain.ErrComputation, got, want)
}
