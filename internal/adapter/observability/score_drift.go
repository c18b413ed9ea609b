package observability

import (
	"log/slog"
	"sync"
)

// Drift monitor defaults.
const (
	DefaultDriftWindow    = 50
	DefaultDriftThreshold = 15.0
)

// ScoreDriftMonitor watches match scores for one tables version and
// embedding model. When no baseline was set, the average of the first full
// window becomes the baseline.
type ScoreDriftMonitor struct {
	mu             sync.RWMutex
	baselineScores map[string]float64
	recentScores   map[string][]float64
	windowSize     int
	driftThreshold float64
	tablesVersion  string
	model          string
}

// NewScoreDriftMonitor creates a new score drift monitor.
func NewScoreDriftMonitor(tablesVersion, model string, windowSize int, driftThreshold float64) *ScoreDriftMonitor {
	if windowSize <= 0 {
		windowSize = DefaultDriftWindow
	}
	if driftThreshold <= 0 {
		driftThreshold = DefaultDriftThreshold
	}
	return &ScoreDriftMonitor{
		baselineScores: make(map[string]float64),
		recentScores:   make(map[string][]float64),
		windowSize:     windowSize,
		driftThreshold: driftThreshold,
		tablesVersion:  tablesVersion,
		model:          model,
	}
}

// UpdateBaseline pins the baseline for a signal.
func (m *ScoreDriftMonitor) UpdateBaseline(signal string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baselineScores[signal] = score
}

// RecordScores feeds every signal of one match into the monitor.
func (m *ScoreDriftMonitor) RecordScores(scores map[string]int) {
	for signal, v := range scores {
		m.RecordScore(signal, float64(v))
	}
}

// RecordScore records a new score and checks for drift.
func (m *ScoreDriftMonitor) RecordScore(signal string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	window := append(m.recentScores[signal], score)
	if len(window) > m.windowSize {
		window = window[1:]
	}
	m.recentScores[signal] = window
	if len(window) < m.windowSize {
		return
	}

	if _, ok := m.baselineScores[signal]; !ok {
		m.baselineScores[signal] = average(window)
		slog.Info("score baseline established",
			slog.String("signal", signal),
			slog.Float64("baseline", m.baselineScores[signal]),
			slog.String("tables_version", m.tablesVersion),
			slog.String("model", m.model))
		return
	}

	drift := m.calculateDrift(signal)
	RecordScoreDrift(signal, m.tablesVersion, m.model, drift)
	if drift > m.driftThreshold {
		slog.Warn("score drift detected",
			slog.String("signal", signal),
			slog.Float64("drift", drift),
			slog.Float64("threshold", m.driftThreshold),
			slog.String("tables_version", m.tablesVersion),
			slog.String("model", m.model))
	}
}

func (m *ScoreDriftMonitor) calculateDrift(signal string) float64 {
	baseline, ok := m.baselineScores[signal]
	if !ok || len(m.recentScores[signal]) == 0 {
		return 0
	}
	drift := average(m.recentScores[signal]) - baseline
	if drift < 0 {
		drift = -drift
	}
	return drift
}

// GetDrift returns the current drift for a signal.
func (m *ScoreDriftMonitor) GetDrift(signal string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calculateDrift(signal)
}

// GetBaseline returns the baseline score for a signal.
func (m *ScoreDriftMonitor) GetBaseline(signal string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	score, ok := m.baselineScores[signal]
	return score, ok
}

// GetRecentScores returns a copy of the recent window for a signal.
func (m *ScoreDriftMonitor) GetRecentScores(signal string) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scores := make([]float64, len(m.recentScores[signal]))
	copy(scores, m.recentScores[signal])
	return scores
}

// Reset drops baselines and windows.
func (m *ScoreDriftMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baselineScores = make(map[string]float64)
	m.recentScores = make(map[string][]float64)
}

func average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
