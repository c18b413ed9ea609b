package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/cv-job-matcher/internal/config"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	"github.com/fairyhunter13/cv-job-matcher/internal/matching"
	"github.com/fairyhunter13/cv-job-matcher/internal/service/ratelimiter"
)

// Backend is the embedder chosen at startup.
type Backend struct {
	// Embedder is nil when semantic similarity is disabled.
	Embedder domain.Embedder
	Provider string
	Model    string
	breaker  *Breaker
}

// Available reports whether an embedder was constructed.
func (b Backend) Available() bool { return b.Embedder != nil }

// Check backs the readiness probe. A disabled backend is ready; an open
// breaker is not.
func (b Backend) Check(_ context.Context) error {
	if b.breaker != nil && b.breaker.State() == CircuitOpen {
		return fmt.Errorf("%w: embeddings circuit open", domain.ErrCapabilityUnavailable)
	}
	return nil
}

// Build selects the embedding provider from cfg. Remote providers are
// stacked as memory cache, Redis cache (when rdb is set), breaker, client;
// the local provider only gets the memory cache. Missing credentials
// disable the capability instead of failing.
func Build(cfg config.Config, rdb *redis.Client, normalizer *matching.Normalizer) (Backend, error) {
	var (
		base    domain.Embedder
		model   string
		breaker *Breaker
	)
	switch cfg.Provider() {
	case config.EmbeddingsProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			slog.Warn("OPENAI_API_KEY not set; semantic similarity disabled")
			return Backend{Provider: config.EmbeddingsProviderNone}, nil
		}
		u, err := url.Parse(cfg.OpenAIBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Backend{}, fmt.Errorf("op=embedding.Build: %w: invalid OPENAI_BASE_URL %q", domain.ErrInvalidArgument, cfg.OpenAIBaseURL)
		}
		var limiter ratelimiter.Limiter
		if l := ratelimiter.NewRedisLuaLimiter(rdb, nil); l != nil && cfg.EmbedRatePerMin > 0 {
			l.SetBucketConfig(RateLimitKey, ratelimiter.NewBucketConfigFromPerMinute(cfg.EmbedRatePerMin))
			limiter = l
		}
		breaker = NewBreaker(NewOpenAIClient(cfg, limiter), "embeddings", cfg.EmbedBreakerThreshold, cfg.EmbedBreakerRecovery)
		model = cfg.EmbeddingsModel
		base = NewRedisCache(breaker, rdb, cfg.Provider()+":"+model, cfg.EmbedCacheTTL)
	case config.EmbeddingsProviderLocal:
		local := NewLocalEmbedder(cfg.LocalEmbedDims, normalizer)
		base = local
		model = fmt.Sprintf("hash-%d", local.Dims())
	default:
		slog.Info("embeddings provider disabled; semantic similarity off")
		return Backend{Provider: config.EmbeddingsProviderNone}, nil
	}

	emb := NewCache(base, cfg.EmbedCacheSize)
	slog.Info("embeddings backend configured",
		slog.String("provider", cfg.Provider()),
		slog.String("model", model),
		slog.Bool("redis_cache", rdb != nil && breaker != nil))
	return Backend{Embedder: emb, Provider: cfg.Provider(), Model: model, breaker: breaker}, nil
}
