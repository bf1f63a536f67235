package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioFivePrunesOldestEntries mirrors spec.md's seed scenario 5:
// maxlen=4, prune_batch=2, insert 6 entries with increasing last_access;
// entries 1 and 2 (the oldest) are expected to be evicted.
func TestScenarioFivePrunesOldestEntries(t *testing.T) {
	c := New(Config{
		SoftCap:                  4,
		HardCap:                  0,
		PruneBatch:               2,
		AdaptiveBatchMin:         2,
		AdaptiveBatchMax:         2,
		BackgroundPruningEnabled: false,
	}, nil)
	defer c.Shutdown()

	ctx := context.Background()
	base := time.Now()
	for i := 1; i <= 6; i++ {
		c.mu.Lock()
		c.entries[keyOf(i)] = Entry{Embedding: []float32{float32(i)}, LastAccess: base.Add(time.Duration(i) * time.Second)}
		c.mu.Unlock()
	}
	c.pruneUntilUnderSoftCap(ctx)

	assert.Equal(t, 4, c.Len())
	_, ok1 := c.Get(keyOf(1))
	_, ok2 := c.Get(keyOf(2))
	assert.False(t, ok1)
	assert.False(t, ok2)
	_, ok6 := c.Get(keyOf(6))
	assert.True(t, ok6)
}

func keyOf(i int) string {
	return string(rune('a' + i))
}

func TestPutTriggersSyncEvictionWhenBackgroundDisabled(t *testing.T) {
	c := New(Config{SoftCap: 2, PruneBatch: 1, BackgroundPruningEnabled: false}, nil)
	defer c.Shutdown()

	ctx := context.Background()
	c.Put(ctx, "a", []float32{1})
	time.Sleep(time.Millisecond)
	c.Put(ctx, "b", []float32{2})
	time.Sleep(time.Millisecond)
	c.Put(ctx, "c", []float32{3})

	assert.LessOrEqual(t, c.Len(), 2)
}

func TestShutdownIsIdempotent(t *testing.T) {
	c := New(Config{SoftCap: 10, BackgroundPruningEnabled: true}, nil)
	c.Shutdown()
	require.NotPanics(t, func() { c.Shutdown() })
}

func TestGetRefreshesLastAccess(t *testing.T) {
	c := New(Config{SoftCap: 10}, nil)
	defer c.Shutdown()
	c.Put(context.Background(), "a", []float32{1})
	c.mu.Lock()
	before := c.entries["a"].LastAccess
	c.mu.Unlock()
	time.Sleep(time.Millisecond)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []float32{1}, v)

	c.mu.Lock()
	after := c.entries["a"].LastAccess
	c.mu.Unlock()
	assert.True(t, after.After(before))
}
