package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/embedding"
	"github.com/fairyhunter13/cv-job-matcher/internal/config"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	"github.com/fairyhunter13/cv-job-matcher/internal/matching"
)

// NewRedis connects to REDIS_URL. An empty URL returns a nil client.
func NewRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("op=app.NewRedis: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("op=app.NewRedis: %w", err)
	}
	return rdb, nil
}

// Matcher bundles the engine with the embedding backend it was built on.
type Matcher struct {
	Engine  *matching.Engine
	Backend embedding.Backend
}

// BuildMatcher loads the static tables, picks the embedding provider and
// constructs the engine. rdb may be nil.
func BuildMatcher(cfg config.Config, rdb *redis.Client) (Matcher, error) {
	tables := matching.DefaultTables()
	if path := strings.TrimSpace(cfg.TaxonomyPath); path != "" {
		t, err := matching.LoadTables(path)
		if err != nil {
			return Matcher{}, fmt.Errorf("op=app.BuildMatcher: %w", err)
		}
		tables = t
	}
	lang := domain.Language(strings.ToLower(strings.TrimSpace(cfg.RecommendationLanguage)))
	if !lang.Valid() {
		return Matcher{}, fmt.Errorf("op=app.BuildMatcher: %w: RECOMMENDATION_LANGUAGE %q", domain.ErrInvalidArgument, cfg.RecommendationLanguage)
	}

	backend, err := embedding.Build(cfg, rdb, matching.NewNormalizer(tables))
	if err != nil {
		return Matcher{}, fmt.Errorf("op=app.BuildMatcher: %w", err)
	}
	engine := matching.NewEngine(
		matching.WithTables(tables),
		matching.WithSimilarity(matching.NewSimilarity(backend.Embedder)),
		matching.WithDefaultLanguage(lang),
	)
	slog.Info("matching engine ready",
		slog.String("tables_version", engine.TablesVersion()),
		slog.String("embeddings_provider", backend.Provider),
		slog.Bool("semantic_available", engine.SemanticAvailable()),
		slog.String("language", string(lang)))
	return Matcher{Engine: engine, Backend: backend}, nil
}
