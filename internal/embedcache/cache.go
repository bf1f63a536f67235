// Package embedcache implements C5: a bounded, LRU-by-last-access
// embedding cache with a dedicated background evictor.
//
// Grounded on the original source's CuriosityManager cache fields
// (embedding_cache_maxlen, embedding_cache_prune_batch,
// embedding_cache_backup_enabled/_path, background_pruning_enabled) and
// its two-phase _prune_cache_main_thread/_background_prune_loop
// (sort-under-lock, release, spill, reacquire, delete-if-still-present),
// and on the shutdown flag+event+join shape the teacher repo uses for its
// background workers (adapted fresh rather than reusing the teacher's
// alert-inhibition state manager, which is Redis/business-metric
// specific and not a structural fit once rewritten for this domain).
package embedcache

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yourorg/sovlcore/internal/collab"
	"github.com/yourorg/sovlcore/pkg/metrics"
)

// pressureSampleWindow bounds how many recent over-soft-cap excess
// readings feed the adaptive batch size's moving average.
const pressureSampleWindow = 20

// Entry is one cached embedding with its last-access timestamp.
type Entry struct {
	Embedding  []float32
	LastAccess time.Time
}

// Config tunes capacity, eviction batching, and spill behavior.
type Config struct {
	SoftCap                  int
	HardCap                  int
	PruneBatch               int
	AdaptiveBatchMin         int
	AdaptiveBatchMax         int
	BackgroundPruningEnabled bool
	SpillEnabled             bool
	SpillPath                string
	RAMMonitor               collab.MemoryMonitor
	GPUMonitor               collab.MemoryMonitor
}

func (c Config) withDefaults() Config {
	if c.PruneBatch <= 0 {
		c.PruneBatch = 1
	}
	if c.AdaptiveBatchMin <= 0 {
		c.AdaptiveBatchMin = c.PruneBatch
	}
	if c.AdaptiveBatchMax <= 0 || c.AdaptiveBatchMax < c.AdaptiveBatchMin {
		c.AdaptiveBatchMax = c.AdaptiveBatchMin
	}
	return c
}

// Cache is the bounded embedding store.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
	cfg     Config

	signal chan struct{}
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	// pressureSamples holds the most recent pressureSampleWindow
	// over-soft-cap excess readings, keyed by a monotonic sequence
	// number; its eviction of the oldest sample on overflow is exactly
	// the bounded recent-history window adaptiveBatchSize needs.
	pressureSamples *lru.Cache[int64, int]
	sampleSeq       int64

	logger  *slog.Logger
	metrics *metrics.CacheMetrics
}

// New constructs a Cache and, if background pruning is enabled, starts
// its evictor goroutine.
func New(cfg Config, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	samples, _ := lru.New[int64, int](pressureSampleWindow)
	c := &Cache{
		entries:         make(map[string]Entry),
		cfg:             cfg.withDefaults(),
		signal:          make(chan struct{}, 1),
		stop:            make(chan struct{}),
		pressureSamples: samples,
		logger:          logger,
		metrics:         metrics.NewCacheMetrics(),
	}
	if c.cfg.BackgroundPruningEnabled {
		c.wg.Add(1)
		go c.evictorLoop()
	}
	return c
}

// Put inserts or updates key's entry, stamping LastAccess to now, then
// checks the hard and soft caps.
func (c *Cache) Put(ctx context.Context, key string, embedding []float32) {
	c.mu.Lock()
	c.entries[key] = Entry{Embedding: embedding, LastAccess: time.Now()}
	size := len(c.entries)
	hardCap := c.cfg.HardCap
	backgroundEnabled := c.cfg.BackgroundPruningEnabled
	c.mu.Unlock()

	c.metrics.Size.Set(float64(size))

	overHard := hardCap > 0 && size > hardCap
	if overHard {
		c.metrics.EvictionsTotal.WithLabelValues("hard_cap").Inc()
		c.signalEvictor()
		if !backgroundEnabled {
			c.pruneUntilUnderSoftCap(ctx)
		}
		return
	}

	if c.shouldSoftEvict(ctx, size) {
		c.metrics.EvictionsTotal.WithLabelValues("soft_cap").Inc()
		c.signalEvictor()
		if !backgroundEnabled {
			c.pruneUntilUnderSoftCap(ctx)
		}
	}
}

// shouldSoftEvict reports whether size exceeds the soft cap, or a
// memory/GPU monitor reports usage above 80%. A monitor error counts as
// high usage (conservative fallback), matching the original source's
// _validate_usage_percentage.
func (c *Cache) shouldSoftEvict(ctx context.Context, size int) bool {
	if c.cfg.SoftCap > 0 && size > c.cfg.SoftCap {
		return true
	}
	if c.cfg.RAMMonitor != nil {
		if usage, err := c.cfg.RAMMonitor.Usage(ctx); err != nil || usage > 80 || usage < 0 || usage > 100 {
			return true
		}
	}
	if c.cfg.GPUMonitor != nil {
		if usage, err := c.cfg.GPUMonitor.Usage(ctx); err != nil || usage > 80 || usage < 0 || usage > 100 {
			return true
		}
	}
	return false
}

// Get returns key's embedding and refreshes its last-access timestamp.
func (c *Cache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e.LastAccess = time.Now()
	c.entries[key] = e
	return e.Embedding, true
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) signalEvictor() {
	select {
	case c.signal <- struct{}{}:
	default:
	}
}

func (c *Cache) evictorLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		case <-c.signal:
			c.pruneUntilUnderSoftCap(context.Background())
		}
	}
}

// keyedEntry pairs a cache key with its entry for sort-then-evict passes.
type keyedEntry struct {
	key   string
	entry Entry
}

// pruneUntilUnderSoftCap repeatedly sorts the cache by last access under
// the lock, releases the lock, optionally spills the batch to disk, then
// reacquires the lock and deletes entries that are still present and
// still due for eviction (a concurrent Put may have refreshed one).
func (c *Cache) pruneUntilUnderSoftCap(ctx context.Context) {
	for {
		c.mu.Lock()
		size := len(c.entries)
		if c.cfg.SoftCap <= 0 || size <= c.cfg.SoftCap {
			c.mu.Unlock()
			return
		}

		ordered := make([]keyedEntry, 0, size)
		for k, e := range c.entries {
			ordered = append(ordered, keyedEntry{k, e})
		}
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].entry.LastAccess.Before(ordered[j].entry.LastAccess)
		})

		excess := size - c.cfg.SoftCap
		c.recordPressureSample(excess)
		batchSize := c.adaptiveBatchSize(excess)
		if batchSize > len(ordered) {
			batchSize = len(ordered)
		}
		victims := ordered[:batchSize]
		c.mu.Unlock()

		if c.cfg.SpillEnabled && c.cfg.SpillPath != "" {
			c.spill(victims)
		}

		c.mu.Lock()
		for _, v := range victims {
			if e, ok := c.entries[v.key]; ok && e.LastAccess.Equal(v.entry.LastAccess) {
				delete(c.entries, v.key)
			}
		}
		remaining := len(c.entries)
		c.mu.Unlock()
		c.metrics.Size.Set(float64(remaining))

		if remaining <= c.cfg.SoftCap {
			return
		}
	}
}

// recordPressureSample stores the latest over-soft-cap excess reading.
func (c *Cache) recordPressureSample(excess int) {
	c.sampleSeq++
	c.pressureSamples.Add(c.sampleSeq, excess)
}

// recentAveragePressure returns the mean of the currently windowed
// excess readings, or 0 if none have been recorded yet.
func (c *Cache) recentAveragePressure() int {
	keys := c.pressureSamples.Keys()
	if len(keys) == 0 {
		return 0
	}
	sum := 0
	for _, k := range keys {
		if v, ok := c.pressureSamples.Peek(k); ok {
			sum += v
		}
	}
	return sum / len(keys)
}

// adaptiveBatchSize scales the eviction batch with how far over the soft
// cap the cache is, biased toward the recent-pressure moving average so
// a sustained trend evicts more aggressively than a single spike would,
// clamped to [AdaptiveBatchMin, AdaptiveBatchMax].
func (c *Cache) adaptiveBatchSize(excess int) int {
	batch := c.cfg.PruneBatch
	if excess > batch {
		batch = excess
	}
	if avg := c.recentAveragePressure(); avg > batch {
		batch = avg
	}
	if batch < c.cfg.AdaptiveBatchMin {
		batch = c.cfg.AdaptiveBatchMin
	}
	if batch > c.cfg.AdaptiveBatchMax {
		batch = c.cfg.AdaptiveBatchMax
	}
	return batch
}

type spillRecord struct {
	Key        string    `json:"key"`
	Embedding  []float32 `json:"embedding"`
	LastAccess time.Time `json:"last_access"`
}

func (c *Cache) spill(victims []keyedEntry) {
	f, err := os.OpenFile(c.cfg.SpillPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		c.logger.Error("embedcache: spill open failed", "path", c.cfg.SpillPath, "error", err)
		return
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, v := range victims {
		rec := spillRecord{Key: v.key, Embedding: v.entry.Embedding, LastAccess: v.entry.LastAccess}
		b, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		w.Write(b)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		c.logger.Error("embedcache: spill flush failed", "path", c.cfg.SpillPath, "error", err)
		return
	}
	c.metrics.SpillsTotal.Inc()
}

// Shutdown stops the evictor goroutine and waits for it to exit. It is
// idempotent: calling it more than once is safe.
func (c *Cache) Shutdown() {
	c.once.Do(func() {
		close(c.stop)
	})
	c.wg.Wait()
}
