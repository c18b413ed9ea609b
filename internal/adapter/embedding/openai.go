// Package embedding provides the embedding backends behind the semantic
// similarity signal: an OpenAI-compatible HTTP client, an offline
// feature-hashing embedder, and the caching and breaker wrappers around them.
package embedding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/embedding/tokens"
	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/cv-job-matcher/internal/config"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	obsctx "github.com/fairyhunter13/cv-job-matcher/internal/observability"
	"github.com/fairyhunter13/cv-job-matcher/internal/service/ratelimiter"
)

// RateLimitKey is the limiter bucket shared by all provider calls.
const RateLimitKey = "embeddings"

// OpenAIClient calls an OpenAI-compatible /embeddings endpoint.
type OpenAIClient struct {
	cfg     config.Config
	hc      *http.Client
	limiter ratelimiter.Limiter
}

// NewOpenAIClient builds a client with otelhttp transport. limiter may be nil.
func NewOpenAIClient(cfg config.Config, limiter ratelimiter.Limiter) *OpenAIClient {
	timeout := cfg.EmbedTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("Embeddings %s %s", r.Method, r.URL.Host)
		}),
	)
	return &OpenAIClient{
		cfg:     cfg,
		hc:      &http.Client{Timeout: timeout, Transport: transport},
		limiter: limiter,
	}
}

func (c *OpenAIClient) backoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, in input order.
func (c *OpenAIClient) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	if c.cfg.OpenAIAPIKey == "" || c.cfg.EmbeddingsModel == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY or EMBEDDINGS_MODEL missing", domain.ErrCapabilityUnavailable)
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	ctx, span := otel.Tracer("embedding").Start(ctx, "OpenAIClient.Embed")
	defer span.End()
	span.SetAttributes(attribute.String("model", c.cfg.EmbeddingsModel), attribute.Int("inputs", len(texts)))
	lg := obsctx.LoggerFromContext(ctx)

	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = tokens.Truncate(t, c.cfg.EmbeddingsModel, c.cfg.EmbedMaxTokens)
	}
	b, err := json.Marshal(map[string]any{"model": c.cfg.EmbeddingsModel, "input": input})
	if err != nil {
		return nil, fmt.Errorf("op=embedding.Embed: %w", err)
	}
	endpoint := strings.TrimRight(c.cfg.OpenAIBaseURL, "/") + "/embeddings"

	var out embedResponse
	var lastStatus int
	op := func() error {
		if err := ratelimiter.Wait(ctx, c.limiter, RateLimitKey, 1); err != nil {
			return backoff.Permanent(err)
		}
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		if err != nil {
			if ctx.Err() == nil {
				lastStatus = 0
			}
			observability.RecordEmbeddingRequest("openai", "error", time.Since(start))
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		lastStatus = resp.StatusCode
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			observability.RecordEmbeddingRequest("openai", "rate_limited", time.Since(start))
			lg.Warn("embedding provider rate limited",
				slog.Int("status", resp.StatusCode),
				slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return fmt.Errorf("rate limited: 429")
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			observability.RecordEmbeddingRequest("openai", "client_error", time.Since(start))
			lg.Warn("embedding provider 4xx",
				slog.Int("status", resp.StatusCode),
				slog.String("model", c.cfg.EmbeddingsModel),
				slog.String("body", readSnippet(resp.Body, 512)))
			return backoff.Permanent(fmt.Errorf("embed status %d", resp.StatusCode))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			observability.RecordEmbeddingRequest("openai", "server_error", time.Since(start))
			lg.Error("embedding provider non-2xx",
				slog.Int("status", resp.StatusCode),
				slog.String("body", readSnippet(resp.Body, 512)))
			return fmt.Errorf("embed status %d", resp.StatusCode)
		}
		out = embedResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			observability.RecordEmbeddingRequest("openai", "decode_error", time.Since(start))
			return backoff.Permanent(fmt.Errorf("decode embeddings: %w", err))
		}
		observability.RecordEmbeddingRequest("openai", "ok", time.Since(start))
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(c.backoffConfig(), ctx)); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("op=embedding.Embed: %w", classify(err, lastStatus))
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("op=embedding.Embed: %w: got %d vectors for %d inputs", domain.ErrComputation, len(out.Data), len(texts))
	}

	res := make([][]float32, len(texts))
	for i, d := range out.Data {
		idx := d.Index
		if idx < 0 || idx >= len(res) || res[idx] != nil {
			idx = i
		}
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		res[idx] = v
	}
	return res, nil
}

// classify maps a final provider error onto the domain taxonomy.
func classify(err error, status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", domain.ErrUpstreamRateLimit, err)
	case errors.Is(err, domain.ErrCapabilityUnavailable):
		return err
	case status >= 500, status == 0:
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrCapabilityUnavailable, err)
	}
}

// readSnippet reads up to n bytes from r for logging.
func readSnippet(r io.Reader, n int64) string {
	if r == nil || n <= 0 {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, n))
	return string(b)
}
