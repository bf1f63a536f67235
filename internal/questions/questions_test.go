package questions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/sovlcore/internal/curiosity"
	"github.com/yourorg/sovlcore/internal/pressure"
)

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

type stubSink struct {
	response string
	answered bool
}

func (s stubSink) AskUser(ctx context.Context, question string) (string, bool, error) {
	return s.response, s.answered, nil
}

func newScorer(t *testing.T) *curiosity.Scorer {
	t.Helper()
	s, err := curiosity.New(curiosity.DefaultWeights(), nil, nil, nil)
	require.NoError(t, err)
	return s
}

// TestScenarioSevenErruptsHighestScore mirrors spec.md's seed scenario 7:
// pre-populate the buffer with ("Q1", 0.6) and ("Q2", 0.8); Erupt must
// return "Q2" and leave the buffer empty.
func TestScenarioSevenErruptsHighestScore(t *testing.T) {
	b := New(Config{}, newScorer(t), nil, nil, nil, nil)
	b.items = []Question{
		{ID: "1", Text: "Q1", Score: 0.6, CreatedAt: time.Now()},
		{ID: "2", Text: "Q2", Score: 0.8, CreatedAt: time.Now()},
	}

	q, ok := b.Erupt()
	require.True(t, ok)
	assert.Equal(t, "Q2", q.Text)
	assert.Equal(t, 0, b.Len())
}

func TestEruptEmptyBufferReturnsFalse(t *testing.T) {
	b := New(Config{}, newScorer(t), nil, nil, nil, nil)
	_, ok := b.Erupt()
	assert.False(t, ok)
}

func TestMaybeAddAppendsAboveThreshold(t *testing.T) {
	acc, err := pressure.New(0, 1, 0, 0, time.Now())
	require.NoError(t, err)

	b := New(Config{CuriosityThreshold: 0.5, InternalThresholdFactor: 0.1}, newScorer(t), acc, stubGenerator{text: "What motivated that choice?"}, nil, nil)
	b.MaybeAdd(context.Background(), "tell me about your day", Context{}, nil, time.Now())
	assert.Equal(t, 1, b.Len())
}

func TestMaybeAddSkipsLowQualityCandidate(t *testing.T) {
	acc, err := pressure.New(0, 1, 0, 0, time.Now())
	require.NoError(t, err)

	b := New(Config{CuriosityThreshold: 0.5, InternalThresholdFactor: 0.1}, newScorer(t), acc, stubGenerator{text: "no"}, nil, nil)
	b.MaybeAdd(context.Background(), "tell me about your day", Context{}, nil, time.Now())
	assert.Equal(t, 0, b.Len())
}

func TestAgePruneRemovesStaleEntries(t *testing.T) {
	b := New(Config{DecaySeconds: 10}, newScorer(t), nil, nil, nil, nil)
	old := time.Now().Add(-time.Hour)
	b.items = []Question{{ID: "1", Text: "stale", Score: 0.9, CreatedAt: old}}
	b.prune(time.Now())
	assert.Equal(t, 0, b.Len())
}

func TestAskOnEruptionNoEruptionReturnsFalse(t *testing.T) {
	acc, err := pressure.New(0, 1, 0, 0, time.Now())
	require.NoError(t, err)
	b := New(Config{}, newScorer(t), acc, nil, stubSink{}, nil)
	_, ok := b.AskOnEruption(context.Background(), 0.7, 0.3, time.Second, time.Now())
	assert.False(t, ok)
}

func TestAskOnEruptionPrefersBuffered(t *testing.T) {
	acc, err := pressure.New(0, 1, 0.9, 0, time.Now())
	require.NoError(t, err)
	b := New(Config{}, newScorer(t), acc, nil, stubSink{response: "42", answered: true}, nil)
	b.items = []Question{{ID: "1", Text: "Why?", Score: 0.5, CreatedAt: time.Now()}}

	resp, ok := b.AskOnEruption(context.Background(), 0.5, 0.1, time.Second, time.Now())
	require.True(t, ok)
	assert.Equal(t, "42", resp)
}

func TestAskOnEruptionFallsBackToGeneratedQuestion(t *testing.T) {
	acc, err := pressure.New(0, 1, 0.9, 0, time.Now())
	require.NoError(t, err)
	b := New(Config{}, newScorer(t), acc, stubGenerator{text: "Why does that matter?"}, stubSink{response: "because", answered: true}, nil)
	b.lastPrompt = "tell me a story"

	resp, ok := b.AskOnEruption(context.Background(), 0.5, 0.1, time.Second, time.Now())
	require.True(t, ok)
	assert.Equal(t, "because", resp)
}

func TestBuildMetaPromptResummarizesWhenTooLong(t *testing.T) {
	b := New(Config{}, newScorer(t), nil, nil, nil, nil)
	long := ""
	for i := 0; i < 500; i++ {
		long += "this is a very long context sentence. "
	}
	prompt := b.buildMetaPrompt(Context{ContextSummary: long, KnownsSummary: long, UnknownsSummary: long})
	assert.Less(t, len(prompt), len(long)*3)
}
