package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// CircuitClosed lets every call through.
	CircuitClosed CircuitState = iota
	// CircuitOpen fails calls fast until the recovery timeout passes.
	CircuitOpen
	// CircuitHalfOpen lets a single probe through.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker stops calling a failing provider for a while so that requests
// degrade to a zero semantic score quickly instead of waiting on retries.
type Breaker struct {
	base             domain.Embedder
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	now              func() time.Time

	mu              sync.Mutex
	state           CircuitState
	failureCount    int
	lastFailureTime time.Time
	probing         bool
}

// NewBreaker wraps base. threshold consecutive failures open the circuit;
// after recovery one probe is allowed through.
func NewBreaker(base domain.Embedder, name string, threshold int, recovery time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if recovery <= 0 {
		recovery = 30 * time.Second
	}
	return &Breaker{
		base:             base,
		name:             name,
		failureThreshold: threshold,
		recoveryTimeout:  recovery,
		now:              time.Now,
		state:            CircuitClosed,
	}
}

// State returns the current circuit state.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Embed fails with ErrCapabilityUnavailable while the circuit is open.
func (b *Breaker) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	if !b.acquire() {
		return nil, fmt.Errorf("%w: circuit %s is %s", domain.ErrCapabilityUnavailable, b.name, b.State())
	}
	vecs, err := b.base.Embed(ctx, texts)
	b.record(err)
	return vecs, err
}

func (b *Breaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if b.now().Sub(b.lastFailureTime) < b.recoveryTimeout {
			return false
		}
		b.setState(CircuitHalfOpen)
		b.probing = true
		return true
	case CircuitHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return false
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false

	// Caller cancellations say nothing about provider health.
	if errors.Is(err, context.Canceled) {
		if b.state == CircuitHalfOpen {
			b.setState(CircuitOpen)
		}
		return
	}
	if err == nil {
		if b.state != CircuitClosed {
			slog.Info("circuit breaker closed after successful recovery", slog.String("name", b.name))
		}
		b.failureCount = 0
		b.setState(CircuitClosed)
		return
	}

	b.failureCount++
	b.lastFailureTime = b.now()
	if b.state == CircuitHalfOpen || b.failureCount >= b.failureThreshold {
		if b.state != CircuitOpen {
			slog.Warn("circuit breaker opened",
				slog.String("name", b.name),
				slog.Int("failure_count", b.failureCount),
				slog.Int("threshold", b.failureThreshold))
		}
		b.setState(CircuitOpen)
	}
}

func (b *Breaker) setState(s CircuitState) {
	b.state = s
	observability.RecordCircuitBreakerState(b.name, int(s))
}
