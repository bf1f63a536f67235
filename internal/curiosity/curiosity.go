// Package curiosity implements C6: novelty/ignorance scoring and the
// weighted curiosity score that feeds the pressure accumulator (C7) and
// the internal question buffer (C8).
//
// Grounded on the original source's Curiosity/CuriosityManager classes:
// _compute_novelty_score (batched cosine similarity with an early-exit
// threshold), _calculate_ignorance (retrieval-based, returns 1.0 on any
// failure), and _validate_weights (hard construction error if the
// configured weights don't sum to 1.0 within tolerance). See DESIGN.md
// for the resolved Open Question on which of the original's several
// curiosity formulas is canonical here.
package curiosity

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/yourorg/sovlcore/internal/collab"
)

const similarityEarlyExitThreshold = 0.99

// Weights are the ignorance/novelty blend coefficients for Curiosity.
// They must sum to 1.0 within 1e-6.
type Weights struct {
	Ignorance float64
	Novelty   float64
}

// DefaultWeights matches the original source's defaults.
func DefaultWeights() Weights {
	return Weights{Ignorance: 0.7, Novelty: 0.3}
}

func (w Weights) validate() error {
	if math.Abs(w.Ignorance+w.Novelty-1.0) > 1e-6 {
		return fmt.Errorf("curiosity: weight_ignorance + weight_novelty must sum to 1.0 (got %v)", w.Ignorance+w.Novelty)
	}
	return nil
}

// VibeProfile optionally biases ComputeWithVibe toward an externally
// supplied curiosity dimension.
type VibeProfile struct {
	Curiosity float64
}

// Scorer computes novelty, ignorance, and the blended curiosity score.
type Scorer struct {
	weights  Weights
	embedder collab.Embedder
	memory   collab.LongTermMemory
	logger   *slog.Logger
}

// New constructs a Scorer. It returns an error if weights don't sum to
// 1.0 within tolerance; this is a hard construction-time failure, not a
// degraded runtime fallback.
func New(weights Weights, embedder collab.Embedder, memory collab.LongTermMemory, logger *slog.Logger) (*Scorer, error) {
	if err := weights.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{weights: weights, embedder: embedder, memory: memory, logger: logger}, nil
}

// CosineSimilarity returns the cosine similarity of a and b, or 0 if
// either is the zero vector or they differ in length.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Score computes novelty-only: the furthest-from-familiar signal given a
// set of memory embeddings and a query embedding. It exits early once a
// similarity at or above similarityEarlyExitThreshold is found (nothing
// is more familiar than an exact-or-near match), and returns 0 when
// memoryEmbeddings is empty (no memory means nothing is novel relative
// to it).
func (s *Scorer) Score(memoryEmbeddings [][]float32, query []float32) float64 {
	if len(memoryEmbeddings) == 0 {
		return 0
	}
	maxSim := 0.0
	for _, mem := range memoryEmbeddings {
		sim := CosineSimilarity(mem, query)
		if sim > maxSim {
			maxSim = sim
		}
		if maxSim >= similarityEarlyExitThreshold {
			break
		}
	}
	return clamp01(1 - maxSim)
}

// Ignorance embeds prompt, retrieves the best long-term-memory match, and
// returns clamp(1 - cosine_similarity, 0, 1). An absent match scores
// 1.0 (maximally ignorant). Any embedder or retrieval failure also
// degrades to 1.0, per the original source's fail-open design.
func (s *Scorer) Ignorance(ctx context.Context, prompt string) float64 {
	if s.embedder == nil || s.memory == nil {
		return 1.0
	}
	embedding, err := s.embedder.Embed(ctx, prompt)
	if err != nil {
		s.logger.Warn("curiosity: embed failed, ignorance degraded to 1.0", "error", err)
		return 1.0
	}
	match, ok, err := s.memory.TopMatch(ctx, embedding)
	if err != nil {
		s.logger.Warn("curiosity: long-term memory lookup failed, ignorance degraded to 1.0", "error", err)
		return 1.0
	}
	if !ok {
		return 1.0
	}
	return clamp01(1 - CosineSimilarity(embedding, match))
}

// Curiosity computes the canonical weighted blend
// weight_ignorance*Ignorance + weight_novelty*Score. Any failure
// embedding the prompt degrades the whole computation to 0.5.
func (s *Scorer) Curiosity(ctx context.Context, prompt string, memoryEmbeddings [][]float32) float64 {
	if s.embedder == nil {
		return 0.5
	}
	query, err := s.embedder.Embed(ctx, prompt)
	if err != nil {
		s.logger.Warn("curiosity: embed failed, curiosity degraded to 0.5", "error", err)
		return 0.5
	}
	ignorance := s.Ignorance(ctx, prompt)
	novelty := s.Score(memoryEmbeddings, query)
	return s.weights.Ignorance*ignorance + s.weights.Novelty*novelty
}

// ComputeWithVibe blends Curiosity 50/50 with vibe's curiosity dimension,
// when vibe is non-nil.
func (s *Scorer) ComputeWithVibe(ctx context.Context, prompt string, memoryEmbeddings [][]float32, vibe *VibeProfile) float64 {
	base := s.Curiosity(ctx, prompt, memoryEmbeddings)
	if vibe == nil {
		return base
	}
	return 0.5*base + 0.5*vibe.Curiosity
}

// Nudge biases an externally tracked curiosity score by amount, clamped
// to [0, 1]. Supplements the core scoring API for callers that want to
// bias curiosity independent of prompt-driven scoring (see SPEC_FULL.md
// "Curiosity nudging").
func Nudge(current, amount float64) float64 {
	return clamp01(current + amount)
}
