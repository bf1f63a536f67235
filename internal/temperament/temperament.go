// Package temperament implements C9: a smoothed mood score driven by
// confidence history, lifecycle stage, and curiosity pressure.
//
// Grounded on the original source's TemperamentConfig/TemperamentSystem:
// the dataclass's per-field range validation, update_temperament's
// target-then-smooth formula, the three-branch lifecycle_bias function,
// and the cached (1s) mood_label property.
package temperament

import (
	"fmt"
	"math/rand"
	"time"
)

// Config holds every tunable parameter, each with the same valid range
// the original source's TemperamentConfig dataclass enforces.
type Config struct {
	EagerThreshold             float64
	SluggishThreshold          float64
	MoodInfluence              float64
	CuriosityBoost             float64
	RestlessDrop               float64
	MelancholyNoise            float64
	ConfidenceFeedbackStrength float64
	TempSmoothingFactor        float64
	DecayRate                  float64
	HistoryMaxlen              int
	ConfidenceHistoryMaxlen    int
	EarlyLifecycle             float64
	MidLifecycle               float64
}

// DefaultConfig returns a Config with the original source's defaults.
func DefaultConfig() Config {
	return Config{
		EagerThreshold:             0.8,
		SluggishThreshold:          0.4,
		MoodInfluence:              0.5,
		CuriosityBoost:             0.2,
		RestlessDrop:               0.2,
		MelancholyNoise:            0.05,
		ConfidenceFeedbackStrength: 0.3,
		TempSmoothingFactor:        0.5,
		DecayRate:                  0.1,
		HistoryMaxlen:              5,
		ConfidenceHistoryMaxlen:    5,
		EarlyLifecycle:             0.2,
		MidLifecycle:               0.7,
	}
}

type rangeCheck struct {
	name     string
	value    float64
	min, max float64
}

// rangeChecks lists every tunable field with its valid range, shared by
// validate() (all fields, hard error) and adjustableRange() (named
// fields only, silent-drop).
func (c Config) rangeChecks() []rangeCheck {
	return []rangeCheck{
		{"eager_threshold", c.EagerThreshold, 0.7, 0.9},
		{"sluggish_threshold", c.SluggishThreshold, 0.3, 0.6},
		{"mood_influence", c.MoodInfluence, 0, 1},
		{"curiosity_boost", c.CuriosityBoost, 0, 0.5},
		{"restless_drop", c.RestlessDrop, 0, 0.5},
		{"melancholy_noise", c.MelancholyNoise, 0, 0.1},
		{"confidence_feedback_strength", c.ConfidenceFeedbackStrength, 0, 1},
		{"temp_smoothing_factor", c.TempSmoothingFactor, 0, 1},
		{"decay_rate", c.DecayRate, 0, 1},
		{"history_maxlen", float64(c.HistoryMaxlen), 3, 10},
		{"confidence_history_maxlen", float64(c.ConfidenceHistoryMaxlen), 3, 10},
		{"early_lifecycle", c.EarlyLifecycle, 0.1, 0.3},
		{"mid_lifecycle", c.MidLifecycle, 0.6, 0.8},
	}
}

func (c Config) validate() error {
	for _, r := range c.rangeChecks() {
		if r.value < r.min || r.value > r.max {
			return fmt.Errorf("temperament: %s (%v) out of [%v, %v]", r.name, r.value, r.min, r.max)
		}
	}
	return nil
}

// adjustableRange looks up the valid range for a field AdjustParameters
// accepts by name; history_maxlen/confidence_history_maxlen are fixed
// at construction and are not adjustable.
func (c Config) adjustableRange(name string) (rangeCheck, bool) {
	switch name {
	case "history_maxlen", "confidence_history_maxlen":
		return rangeCheck{}, false
	}
	for _, r := range c.rangeChecks() {
		if r.name == name {
			return r, true
		}
	}
	return rangeCheck{}, false
}

// Mood is the cached, discrete label derived from the score.
type Mood int

const (
	MoodCurious Mood = iota
	MoodCalm
	MoodRestless
	MoodMelancholic
)

func (m Mood) String() string {
	switch m {
	case MoodCurious:
		return "curious"
	case MoodCalm:
		return "calm"
	case MoodRestless:
		return "restless"
	case MoodMelancholic:
		return "melancholic"
	default:
		return "unknown"
	}
}

// System is a smoothed temperament score in [-1, 1].
type System struct {
	cfg   Config
	score float64

	confidenceHistory []float64
	sum               float64
	count             int

	moodCache     Mood
	moodCacheTime time.Time
	hasMoodCache  bool

	rng *rand.Rand
}

// New constructs a System with score 0.0. Invalid config ranges are a
// hard construction-time error, matching the original dataclass's own
// validate().
func New(cfg Config, seed int64) (*System, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &System{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

// Score returns the current temperament score in [-1, 1].
func (s *System) Score() float64 { return s.score }

// MoodLabel returns the mood derived from the score, cached for 1
// second so repeated reads within a tight loop don't recompute it.
func (s *System) MoodLabel(now time.Time) Mood {
	if s.hasMoodCache && now.Sub(s.moodCacheTime) < time.Second {
		return s.moodCache
	}
	mood := s.computeMood()
	s.moodCache = mood
	s.moodCacheTime = now
	s.hasMoodCache = true
	return mood
}

func (s *System) computeMood() Mood {
	switch {
	case s.score < -0.5:
		return MoodMelancholic
	case s.score < 0.0:
		return MoodRestless
	case s.score < s.cfg.SluggishThreshold:
		return MoodCalm
	default:
		return MoodCurious
	}
}

// Update folds a new confidence/lifecycle-stage observation into the
// temperament score. dt defaults to 1.0 if zero. curiosityPressure
// defaults to 0 if nil.
func (s *System) Update(confidence, lifecycleStage float64, dt float64, curiosityPressure *float64) {
	if dt == 0 {
		dt = 1.0
	}
	pressure := 0.0
	if curiosityPressure != nil {
		pressure = *curiosityPressure
	}

	s.pushConfidence(confidence)
	avgConfidence := s.averageConfidence()

	base := 2 * (avgConfidence - 0.5)
	bias := s.lifecycleBias(lifecycleStage)
	noise := s.noise()

	target := base + bias + s.cfg.ConfidenceFeedbackStrength*(avgConfidence-0.5) + s.cfg.CuriosityBoost*pressure + noise
	target = clamp(target, -1, 1)

	smooth := s.cfg.TempSmoothingFactor * (1 - s.cfg.DecayRate*dt)
	s.score = clamp((1-smooth)*target+smooth*s.score, -1, 1)
}

func (s *System) pushConfidence(c float64) {
	s.confidenceHistory = append(s.confidenceHistory, c)
	s.sum += c
	s.count++
	if len(s.confidenceHistory) > s.cfg.ConfidenceHistoryMaxlen {
		removed := s.confidenceHistory[0]
		s.confidenceHistory = s.confidenceHistory[1:]
		s.sum -= removed
		s.count--
	}
}

// averageConfidence is the running mean, defaulting to 0.5 (safe_divide
// default) when there is no history yet.
func (s *System) averageConfidence() float64 {
	if s.count == 0 {
		return 0.5
	}
	return s.sum / float64(s.count)
}

// lifecycleBias implements the three-branch curve: curious-new while
// early in the lifecycle, stabilizing (variance-penalized) through the
// middle, mellowing as it approaches maturity.
func (s *System) lifecycleBias(stage float64) float64 {
	switch {
	case stage < s.cfg.EarlyLifecycle:
		return s.cfg.CuriosityBoost * (1 - stage/s.cfg.EarlyLifecycle)
	case stage < s.cfg.MidLifecycle:
		if len(s.confidenceHistory) >= s.cfg.ConfidenceHistoryMaxlen {
			return -0.2 * variance(s.confidenceHistory)
		}
		return 0
	default:
		return -s.cfg.CuriosityBoost * (stage - s.cfg.MidLifecycle) / (1 - s.cfg.MidLifecycle)
	}
}

// noise is Gaussian with stddev melancholy_noise, doubled while the
// current mood is melancholic.
func (s *System) noise() float64 {
	stddev := s.cfg.MelancholyNoise
	if s.computeMood() == MoodMelancholic {
		stddev *= 2
	}
	return s.rng.NormFloat64() * stddev
}

// AdjustParameters overrides config fields named in updates, silently
// dropping any value outside its documented range (the caller is
// untrusted, per the original source's adjust_temperament).
func (s *System) AdjustParameters(updates map[string]float64) {
	cfg := s.cfg
	for name, value := range updates {
		r, ok := cfg.adjustableRange(name)
		if !ok || value < r.min || value > r.max {
			continue
		}
		applyField(&cfg, name, value)
	}
	s.cfg = cfg
}

func applyField(cfg *Config, name string, value float64) {
	switch name {
	case "eager_threshold":
		cfg.EagerThreshold = value
	case "sluggish_threshold":
		cfg.SluggishThreshold = value
	case "mood_influence":
		cfg.MoodInfluence = value
	case "curiosity_boost":
		cfg.CuriosityBoost = value
	case "restless_drop":
		cfg.RestlessDrop = value
	case "melancholy_noise":
		cfg.MelancholyNoise = value
	case "confidence_feedback_strength":
		cfg.ConfidenceFeedbackStrength = value
	case "temp_smoothing_factor":
		cfg.TempSmoothingFactor = value
	case "decay_rate":
		cfg.DecayRate = value
	case "early_lifecycle":
		cfg.EarlyLifecycle = value
	case "mid_lifecycle":
		cfg.MidLifecycle = value
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}
