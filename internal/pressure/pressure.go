// Package pressure implements C7: the decayed pressure accumulator whose
// only discrete event is an eruption, gated by a threshold and a
// cooldown.
//
// Grounded on the original source's CuriosityPressure class: its
// constructor range validation (min <= base <= max), decay_pressure's
// elapsed-time decay, and check_eruption's decay-then-compare
// cooldown gate.
package pressure

import (
	"fmt"
	"sync"
	"time"

	"github.com/yourorg/sovlcore/pkg/metrics"
)

// Accumulator tracks a bounded pressure level that decays over time and
// rises when curiosity scores are added.
type Accumulator struct {
	mu sync.Mutex

	min, max     float64
	current      float64
	decayRate    float64
	addGain      float64
	lastUpdate   time.Time
	lastEruption time.Time

	metrics *metrics.PressureMetrics
}

// New constructs an Accumulator. base must lie within [min, max];
// violating this is a construction-time error, matching the original
// source's __init__ validation.
func New(min, max, base, decayRate float64, now time.Time) (*Accumulator, error) {
	if min > max {
		return nil, fmt.Errorf("pressure: min (%v) > max (%v)", min, max)
	}
	if base < min || base > max {
		return nil, fmt.Errorf("pressure: base (%v) out of [%v, %v]", base, min, max)
	}
	return &Accumulator{
		min:        min,
		max:        max,
		current:    base,
		decayRate:  decayRate,
		addGain:    0.1,
		lastUpdate: now,
		metrics:    metrics.NewPressureMetrics(),
	}, nil
}

// WithAddGain overrides the default add() gain (k), returning the same
// accumulator for chaining.
func (a *Accumulator) WithAddGain(k float64) *Accumulator {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.addGain = k
	return a
}

// Decay applies a decay proportional to the elapsed time since the last
// update: current = max(min, current * (1 - decay_rate * elapsed)).
func (a *Accumulator) Decay(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.decayLocked(now)
}

func (a *Accumulator) decayLocked(now time.Time) {
	elapsed := now.Sub(a.lastUpdate).Seconds()
	if elapsed > 0 {
		a.current = maxFloat(a.min, a.current*(1-a.decayRate*elapsed))
	}
	a.lastUpdate = now
	a.metrics.Current.Set(a.current)
}

// Add raises the current pressure by addGain*score, capped at max.
func (a *Accumulator) Add(score float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = minFloat(a.max, a.current+a.addGain*score)
	a.metrics.Current.Set(a.current)
}

// Current returns the current pressure level.
func (a *Accumulator) Current() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// CheckEruption decays the pressure for now, then checks whether it has
// reached threshold and the cooldown since the last eruption has
// elapsed. On eruption, current drops by drop (floored at min) and the
// eruption timestamp updates. Eruption is the accumulator's only
// discrete event.
func (a *Accumulator) CheckEruption(threshold, drop float64, cooldown time.Duration, now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.decayLocked(now)

	if a.current >= threshold && now.Sub(a.lastEruption) > cooldown {
		a.current = maxFloat(a.min, a.current-drop)
		a.lastEruption = now
		a.metrics.Current.Set(a.current)
		a.metrics.Eruptions.Inc()
		return true
	}
	return false
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
