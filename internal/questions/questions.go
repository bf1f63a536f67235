// Package questions implements C8: a bounded buffer of candidate
// internal questions, generated from high-curiosity prompts and erupted
// to the user when pressure (C7) crosses its threshold.
//
// Grounded on the original source's CuriosityManager: _internal_questions
// deque, _maybe_generate_internal_question's age-pruning and
// threshold-gated generation, build_curiosity_prompt/summarize_context's
// templated meta-prompt with a 2000-char re-summarization threshold, and
// generate_curiosity_question/ask_user_curiosity_question's
// buffer-then-erupt-then-fallback flow.
package questions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/yourorg/sovlcore/internal/collab"
	"github.com/yourorg/sovlcore/internal/curiosity"
	"github.com/yourorg/sovlcore/internal/pressure"
)

const metaPromptCharLimit = 2000

// Question is one buffered candidate, scored by the curiosity of the
// prompt that produced it.
type Question struct {
	ID        string
	Text      string
	Score     float64
	CreatedAt time.Time
}

// Context bundles the three substitution points of the meta-prompt
// template: a summary of the conversation so far, what the system
// already knows, and what it doesn't.
type Context struct {
	ContextSummary  string
	KnownsSummary   string
	UnknownsSummary string
}

// Config tunes the buffer's capacity, aging, and generation thresholds.
type Config struct {
	Capacity                int
	DecaySeconds            float64
	CuriosityThreshold      float64
	InternalThresholdFactor float64
	Blacklist               []string

	// GenerateCooldown rate-limits MaybeAdd's calls to the generator to
	// at most one per interval (burst 1), matching curiosity_config's
	// question_cooldown: the buffer shouldn't hammer the generator
	// just because prompts keep clearing the internal threshold. The
	// fallback generation in AskOnEruption is not rate-limited.
	GenerateCooldown time.Duration
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = 20
	}
	if c.DecaySeconds <= 0 {
		c.DecaySeconds = 3600
	}
	if c.CuriosityThreshold <= 0 {
		c.CuriosityThreshold = 0.5
	}
	if c.InternalThresholdFactor <= 0 {
		c.InternalThresholdFactor = 0.75
	}
	if c.GenerateCooldown <= 0 {
		c.GenerateCooldown = 60 * time.Second
	}
	return c
}

func (c Config) internalThreshold() float64 {
	return c.CuriosityThreshold * c.InternalThresholdFactor
}

// Buffer is the bounded internal-question deque.
type Buffer struct {
	cfg       Config
	items     []Question
	scorer    *curiosity.Scorer
	pressure  *pressure.Accumulator
	generator collab.Generator
	sink      collab.OutputSink

	lastPrompt string
	logger     *slog.Logger
	limiter    *rate.Limiter
}

// New constructs a Buffer bound to the given curiosity scorer and
// pressure accumulator.
func New(cfg Config, scorer *curiosity.Scorer, acc *pressure.Accumulator, generator collab.Generator, sink collab.OutputSink, logger *slog.Logger) *Buffer {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Buffer{
		cfg:       cfg,
		scorer:    scorer,
		pressure:  acc,
		generator: generator,
		sink:      sink,
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Every(cfg.GenerateCooldown), 1),
	}
}

// Len returns the number of buffered questions.
func (b *Buffer) Len() int { return len(b.items) }

// MaybeAdd scores prompt's curiosity, feeds the score into the pressure
// accumulator, age-prunes the buffer, and — if the score clears the
// internal threshold (curiosity_threshold * internal_threshold_factor) —
// generates a candidate question via the meta-prompt template and
// appends it if it passes the quality filter.
func (b *Buffer) MaybeAdd(ctx context.Context, prompt string, qc Context, memoryEmbeddings [][]float32, now time.Time) {
	b.lastPrompt = prompt

	score := b.scorer.Curiosity(ctx, prompt, memoryEmbeddings)
	if b.pressure != nil {
		b.pressure.Add(score)
	}

	b.prune(now)

	if score < b.cfg.internalThreshold() {
		return
	}

	if b.generator == nil || !b.limiter.Allow() {
		return
	}

	metaPrompt := b.buildMetaPrompt(qc)
	candidate, err := b.generator.Generate(ctx, metaPrompt)
	if err != nil {
		b.logger.Warn("questions: generation failed", "error", err)
		return
	}

	if !b.passesQualityFilter(candidate, prompt) {
		return
	}

	b.items = append(b.items, Question{
		ID:        uuid.NewString(),
		Text:      candidate,
		Score:     score,
		CreatedAt: now,
	})

	if len(b.items) > b.cfg.Capacity {
		b.items = b.items[len(b.items)-b.cfg.Capacity:]
	}
}

func (b *Buffer) prune(now time.Time) {
	cutoff := now.Add(-time.Duration(b.cfg.DecaySeconds) * time.Second)
	kept := b.items[:0:0]
	for _, q := range b.items {
		if q.CreatedAt.After(cutoff) {
			kept = append(kept, q)
		}
	}
	b.items = kept
}

// buildMetaPrompt fills the three-point template; if the rendered prompt
// exceeds metaPromptCharLimit, each section is re-summarized more
// aggressively (truncated to a single leading sentence), matching the
// original source's summarize_context.
func (b *Buffer) buildMetaPrompt(qc Context) string {
	render := func(c Context) string {
		return fmt.Sprintf(
			"Given the conversation so far:\n%s\n\nWhat is already known:\n%s\n\nWhat remains unknown:\n%s\n\nGenerate one curious, specific follow-up question.",
			c.ContextSummary, c.KnownsSummary, c.UnknownsSummary,
		)
	}

	prompt := render(qc)
	if len(prompt) <= metaPromptCharLimit {
		return prompt
	}

	aggressive := Context{
		ContextSummary:  firstSentence(qc.ContextSummary),
		KnownsSummary:   firstSentence(qc.KnownsSummary),
		UnknownsSummary: firstSentence(qc.UnknownsSummary),
	}
	return render(aggressive)
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, ".!?"); idx >= 0 {
		return s[:idx+1]
	}
	if len(s) > 200 {
		return s[:200]
	}
	return s
}

// passesQualityFilter rejects empty, too-short, blacklisted, or
// verbatim-overlapping candidates.
func (b *Buffer) passesQualityFilter(candidate, prompt string) bool {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) < 5 {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, blocked := range b.cfg.Blacklist {
		if strings.Contains(lower, strings.ToLower(blocked)) {
			return false
		}
	}
	if prompt != "" && strings.Contains(lower, strings.ToLower(prompt)) {
		return false
	}
	return true
}

// Erupt returns the highest-scoring buffered question and clears the
// buffer, or ok=false if the buffer is empty.
func (b *Buffer) Erupt() (Question, bool) {
	if len(b.items) == 0 {
		return Question{}, false
	}
	best := b.items[0]
	for _, q := range b.items[1:] {
		if q.Score > best.Score {
			best = q
		}
	}
	b.items = nil
	return best, true
}

// AskOnEruption checks the pressure accumulator for an eruption; if one
// fires, it prefers the best buffered question, falls back to a
// generated question derived from the last observed prompt if the buffer
// is empty, and otherwise returns ok=false. On a question, it is emitted
// through the output sink and the captured user response is returned.
func (b *Buffer) AskOnEruption(ctx context.Context, threshold, drop float64, cooldown time.Duration, now time.Time) (response string, ok bool) {
	if b.pressure == nil || !b.pressure.CheckEruption(threshold, drop, cooldown, now) {
		return "", false
	}

	question, found := b.Erupt()
	text := question.Text
	if !found {
		text = b.fallbackQuestion(ctx)
		if text == "" {
			return "", false
		}
	}

	if b.sink == nil {
		return "", false
	}
	resp, answered, err := b.sink.AskUser(ctx, text)
	if err != nil || !answered {
		return "", false
	}
	return resp, true
}

func (b *Buffer) fallbackQuestion(ctx context.Context) string {
	if b.generator == nil || b.lastPrompt == "" {
		return ""
	}
	q, err := b.generator.Generate(ctx, fmt.Sprintf("Ask one curious follow-up question about: %s", b.lastPrompt))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(q)
}
