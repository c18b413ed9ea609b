// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Embedding providers understood by EMBEDDINGS_PROVIDER.
const (
	EmbeddingsProviderOpenAI = "openai"
	EmbeddingsProviderLocal  = "local"
	EmbeddingsProviderNone   = "none"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`
	// DBURL empty disables match persistence.
	DBURL string `env:"DB_URL"`
	// RedisURL empty disables the shared embedding cache.
	RedisURL string `env:"REDIS_URL"`

	EmbeddingsProvider string        `env:"EMBEDDINGS_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	EmbeddingsModel    string        `env:"EMBEDDINGS_MODEL" envDefault:"text-embedding-3-small"`
	EmbedCacheSize     int           `env:"EMBED_CACHE_SIZE" envDefault:"2048"`
	EmbedCacheTTL      time.Duration `env:"EMBED_CACHE_TTL" envDefault:"24h"`
	EmbedMaxTokens     int           `env:"EMBED_MAX_TOKENS" envDefault:"8000"`
	EmbedTimeout       time.Duration `env:"EMBED_TIMEOUT" envDefault:"20s"`
	LocalEmbedDims     int           `env:"LOCAL_EMBED_DIMS" envDefault:"512"`
	// Circuit breaker around the embedding provider.
	EmbedBreakerThreshold int           `env:"EMBED_BREAKER_THRESHOLD" envDefault:"5"`
	EmbedBreakerRecovery  time.Duration `env:"EMBED_BREAKER_RECOVERY" envDefault:"30s"`
	// EmbedRatePerMin caps provider calls across replicas via Redis; 0 disables.
	EmbedRatePerMin int `env:"EMBED_RATE_PER_MIN" envDefault:"0"`

	// AI Backoff Configuration
	AIBackoffMaxElapsedTime  time.Duration `env:"AI_BACKOFF_MAX_ELAPSED_TIME" envDefault:"30s"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"500ms"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"5s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`

	// TaxonomyPath points at a YAML file replacing the embedded matching tables.
	TaxonomyPath           string `env:"TAXONOMY_PATH"`
	MaxDocumentChars       int    `env:"MAX_DOCUMENT_CHARS" envDefault:"100000"`
	RecommendationLanguage string `env:"RECOMMENDATION_LANGUAGE" envDefault:"en"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"cv-job-matcher"`

	MaxBodyKB             int64         `env:"MAX_BODY_KB" envDefault:"1024"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	DataRetentionDays     int           `env:"DATA_RETENTION_DAYS" envDefault:"90"`
	CleanupInterval       time.Duration `env:"CLEANUP_INTERVAL" envDefault:"24h"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// PersistenceEnabled reports whether match results are stored.
func (c Config) PersistenceEnabled() bool { return strings.TrimSpace(c.DBURL) != "" }

// Provider returns the normalized embeddings provider name.
// An unknown value is treated as none.
func (c Config) Provider() string {
	switch p := strings.ToLower(strings.TrimSpace(c.EmbeddingsProvider)); p {
	case EmbeddingsProviderOpenAI, EmbeddingsProviderLocal:
		return p
	default:
		return EmbeddingsProviderNone
	}
}

// GetAIBackoffConfig returns backoff configuration appropriate for the current environment.
// In test environments, uses much shorter timeouts for faster test execution.
func (c Config) GetAIBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 10 * time.Millisecond, 100 * time.Millisecond, 2.0
	}
	return c.AIBackoffMaxElapsedTime, c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}
