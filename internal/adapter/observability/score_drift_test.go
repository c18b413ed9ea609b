package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreDriftMonitor_BaselineFromFirstWindow(t *testing.T) {
	m := NewScoreDriftMonitor("2024.1", "local", 3, 10)

	m.RecordScore("overall", 50)
	m.RecordScore("overall", 60)
	_, ok := m.GetBaseline("overall")
	assert.False(t, ok)

	m.RecordScore("overall", 70)
	baseline, ok := m.GetBaseline("overall")
	require.True(t, ok)
	assert.Equal(t, 60.0, baseline)
	assert.Equal(t, 0.0, m.GetDrift("overall"))
}

func TestScoreDriftMonitor_DriftAndWindow(t *testing.T) {
	m := NewScoreDriftMonitor("2024.1", "none", 2, 5)
	m.UpdateBaseline("skill", 40)

	m.RecordScore("skill", 80)
	m.RecordScore("skill", 90)
	m.RecordScore("skill", 100)

	assert.Equal(t, []float64{90, 100}, m.GetRecentScores("skill"))
	assert.Equal(t, 55.0, m.GetDrift("skill"))

	m.UpdateBaseline("skill", 100)
	assert.Equal(t, 5.0, m.GetDrift("skill"))
}

func TestScoreDriftMonitor_RecordScoresAndReset(t *testing.T) {
	m := NewScoreDriftMonitor("v", "m", 1, 0)
	m.RecordScores(map[string]int{"keyword": 30, "semantic": 0})

	b, ok := m.GetBaseline("keyword")
	require.True(t, ok)
	assert.Equal(t, 30.0, b)

	m.Reset()
	_, ok = m.GetBaseline("keyword")
	assert.False(t, ok)
	assert.Empty(t, m.GetRecentScores("keyword"))
	assert.Equal(t, 0.0, m.GetDrift("unknown"))
}

func TestNewScoreDriftMonitor_Defaults(t *testing.T) {
	m := NewScoreDriftMonitor("v", "m", 0, -1)
	assert.Equal(t, DefaultDriftWindow, m.windowSize)
	assert.Equal(t, DefaultDriftThreshold, m.driftThreshold)
}
