package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

var scoreBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	MatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_total",
			Help: "Total number of CV/job matches computed",
		},
		[]string{"language", "semantic"},
	)
	MatchScoreHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_score",
			Help:    "Distribution of match scores per signal ([0,100])",
			Buckets: scoreBuckets,
		},
		[]string{"signal"},
	)
	SemanticUnavailableTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "match_semantic_unavailable_total",
			Help: "Matches computed without a semantic backend",
		},
	)
	MatchesPersistedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_persisted_total",
			Help: "Match persistence attempts by outcome",
		},
		[]string{"outcome"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_requests_total",
			Help: "Total number of embedding requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "embedding_request_duration_seconds",
			Help:    "Embedding request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider"},
	)
	EmbedCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embed_cache_total",
			Help: "Embedding cache lookups by layer and result",
		},
		[]string{"layer", "result"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	ScoreDriftGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "match_score_drift",
			Help: "Absolute drift of the recent average score from its baseline",
		},
		[]string{"signal", "tables_version", "model"},
	)
	RetentionDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_deleted_total",
			Help: "Stored matches removed by the retention job",
		},
	)
)

var registerOnce sync.Once

// InitMetrics registers all collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			MatchesTotal,
			MatchScoreHistogram,
			SemanticUnavailableTotal,
			MatchesPersistedTotal,
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbedCacheTotal,
			CircuitBreakerState,
			ScoreDriftGauge,
			RetentionDeletedTotal,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveMatch records one computed match.
func ObserveMatch(res domain.MatchScoreResult, language domain.Language, semanticAvailable bool) {
	MatchesTotal.WithLabelValues(string(language), strconv.FormatBool(semanticAvailable)).Inc()
	if !semanticAvailable {
		SemanticUnavailableTotal.Inc()
	}
	for signal, v := range SignalScores(res) {
		MatchScoreHistogram.WithLabelValues(signal).Observe(float64(v))
	}
}

// SignalScores names each score of res by signal.
func SignalScores(res domain.MatchScoreResult) map[string]int {
	return map[string]int{
		"overall":    res.OverallScore,
		"skill":      res.SkillScore,
		"keyword":    res.KeywordScore,
		"semantic":   res.SemanticScore,
		"experience": res.ExperienceScore,
	}
}

// RecordPersist counts a persistence attempt ("ok", "error" or "skipped").
func RecordPersist(outcome string) {
	MatchesPersistedTotal.WithLabelValues(outcome).Inc()
}

// RecordEmbeddingRequest counts one provider call and its latency.
func RecordEmbeddingRequest(provider, outcome string, d time.Duration) {
	EmbeddingRequestsTotal.WithLabelValues(provider, outcome).Inc()
	EmbeddingRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordEmbedCache counts a cache lookup on the given layer.
func RecordEmbedCache(layer string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	EmbedCacheTotal.WithLabelValues(layer, result).Inc()
}

// RecordCircuitBreakerState publishes a breaker's state.
func RecordCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordScoreDrift publishes the drift of one signal.
func RecordScoreDrift(signal, tablesVersion, model string, drift float64) {
	ScoreDriftGauge.WithLabelValues(signal, tablesVersion, model).Set(drift)
}

// RecordRetentionDeleted counts rows removed by the retention job.
func RecordRetentionDeleted(n int64) {
	if n > 0 {
		RetentionDeletedTotal.Add(float64(n))
	}
}
