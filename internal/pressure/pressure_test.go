package pressure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBaseOutsideRange(t *testing.T) {
	_, err := New(0, 1, 1.5, 0.1, time.Now())
	assert.Error(t, err)
}

// TestScenarioSixEruptionThenCooldown mirrors spec.md's seed scenario 6:
// threshold=0.7, drop=0.3, cooldown=30s, decay_rate=0, current starts at
// 0.75. The first check erupts (current -> 0.45); an immediate second
// check does not (cooldown not yet elapsed).
func TestScenarioSixEruptionThenCooldown(t *testing.T) {
	now := time.Now()
	a, err := New(0, 1, 0.75, 0, now)
	require.NoError(t, err)

	erupted := a.CheckEruption(0.7, 0.3, 30*time.Second, now)
	assert.True(t, erupted)
	assert.InDelta(t, 0.45, a.Current(), 1e-9)

	erupted = a.CheckEruption(0.7, 0.3, 30*time.Second, now)
	assert.False(t, erupted)
}

func TestCheckEruptionAfterCooldownElapses(t *testing.T) {
	now := time.Now()
	a, err := New(0, 1, 0.75, 0, now)
	require.NoError(t, err)

	require.True(t, a.CheckEruption(0.7, 0.3, 30*time.Second, now))

	a.Add(1.0) // current = 0.45 + 0.1*1.0 = 0.55, still below threshold
	later := now.Add(31 * time.Second)
	assert.False(t, a.CheckEruption(0.7, 0.3, 30*time.Second, later))
}

func TestDecayReducesCurrentOverTime(t *testing.T) {
	now := time.Now()
	a, err := New(0, 1, 1.0, 0.5, now)
	require.NoError(t, err)

	a.Decay(now.Add(1 * time.Second))
	assert.InDelta(t, 0.5, a.Current(), 1e-9)
}

func TestAddCapsAtMax(t *testing.T) {
	now := time.Now()
	a, err := New(0, 1, 0.9, 0, now)
	require.NoError(t, err)
	a.Add(5.0)
	assert.Equal(t, 1.0, a.Current())
}
