package configmanager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/sovlcore/internal/schema"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(
		schema.Descriptor{Key: "logging_config.level", Type: schema.KindString, Predicate: schema.EnumOf("debug", "info", "warn", "error")},
		schema.Descriptor{Key: "curiosity_config.weight_novelty", Type: schema.KindFloat, Range: &schema.Range{Min: 0, Max: 1}},
	))
	path := filepath.Join(t.TempDir(), "config.json")
	return New(reg, Options{Path: path, MaxRetries: 1})
}

func TestUpdateAppliesValidValue(t *testing.T) {
	m := newTestManager(t)
	ok := m.Update(context.Background(), "logging_config.level", "warn")
	require.True(t, ok)

	v, found := m.Get("logging_config.level")
	require.True(t, found)
	assert.Equal(t, "warn", v)
}

func TestUpdateRejectsInvalidValue(t *testing.T) {
	m := newTestManager(t)
	ok := m.Update(context.Background(), "logging_config.level", "trace")
	assert.False(t, ok)
	_, found := m.Get("logging_config.level")
	assert.False(t, found)
}

func TestUpdateRejectedWhenFrozen(t *testing.T) {
	m := newTestManager(t)
	m.Freeze()
	ok := m.Update(context.Background(), "logging_config.level", "warn")
	assert.False(t, ok)
}

func TestUpdateBatchAllOrNothing(t *testing.T) {
	m := newTestManager(t)
	ok := m.UpdateBatch(context.Background(), map[string]any{
		"logging_config.level":           "warn",
		"curiosity_config.weight_novelty": 2.0, // out of range
	}, true)
	assert.False(t, ok)

	_, found := m.Get("logging_config.level")
	assert.False(t, found, "no key should be applied when any key in the batch fails")
}

func TestSubscribeReceivesChangedKeys(t *testing.T) {
	m := newTestManager(t)
	var received map[string]any
	m.Subscribe(func(changed map[string]any) {
		received = changed
	})

	ok := m.Update(context.Background(), "logging_config.level", "error")
	require.True(t, ok)
	require.NotNil(t, received)
	assert.Equal(t, "error", received["logging_config.level"])
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	m := newTestManager(t)
	calls := 0
	sub := m.Subscribe(func(changed map[string]any) { calls++ })
	m.Unsubscribe(sub)

	m.Update(context.Background(), "logging_config.level", "error")
	assert.Equal(t, 0, calls)
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	m := newTestManager(t)
	secondCalled := false
	m.Subscribe(func(changed map[string]any) { panic("boom") })
	m.Subscribe(func(changed map[string]any) { secondCalled = true })

	ok := m.Update(context.Background(), "logging_config.level", "error")
	assert.True(t, ok)
	assert.True(t, secondCalled)
}

func TestDiffIsSymmetric(t *testing.T) {
	m := newTestManager(t)
	m.Update(context.Background(), "logging_config.level", "warn")

	changed := m.Diff(map[string]any{
		"logging_config.level": "info",
		"extra.only.there":     "x",
	})
	assert.Equal(t, "warn", changed["logging_config.level"])
	assert.Equal(t, "x", changed["extra.only.there"])
}

func TestStateLoadStateRoundTrip(t *testing.T) {
	m := newTestManager(t)
	m.Update(context.Background(), "logging_config.level", "warn")
	snap := m.State()

	m2 := newTestManager(t)
	m2.LoadState(snap)

	v, found := m2.Get("logging_config.level")
	require.True(t, found)
	assert.Equal(t, "warn", v)
	assert.Equal(t, snap.Hash, m2.Hash())
}

func TestHashChangesOnUpdate(t *testing.T) {
	m := newTestManager(t)
	before := m.Hash()
	m.Update(context.Background(), "logging_config.level", "warn")
	after := m.Hash()
	assert.NotEqual(t, before, after)
	assert.Len(t, after, 16)
}

func newDefaultedTestManager(t *testing.T) *Manager {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(
		schema.Descriptor{Key: "core_config.base_model_name", Type: schema.KindString, Required: true, Default: "gpt2"},
		schema.Descriptor{Key: "core_config.hidden_size", Type: schema.KindInt, Default: 768, Range: &schema.Range{Min: 128, Max: 4096}},
	))
	path := filepath.Join(t.TempDir(), "config.json")
	return New(reg, Options{Path: path, MaxRetries: 1})
}

func TestDefaultFillPopulatesMissingKeysOnNew(t *testing.T) {
	m := newDefaultedTestManager(t)
	v, found := m.Get("core_config.base_model_name")
	require.True(t, found)
	assert.Equal(t, "gpt2", v)
}

func TestDefaultFillPopulatesMissingKeysOnLoad(t *testing.T) {
	m := newDefaultedTestManager(t)
	m.Load(context.Background())

	v, found := m.Get("core_config.base_model_name")
	require.True(t, found)
	assert.Equal(t, "gpt2", v)

	v, found = m.Get("core_config.hidden_size")
	require.True(t, found)
	assert.Equal(t, 768, v)
}

func TestDefaultFillReplacesInvalidOnDiskValue(t *testing.T) {
	m := newDefaultedTestManager(t)
	// Simulate an out-of-range value already present before the fill pass
	// would otherwise run again (e.g. coming from a raw on-disk load).
	m.store.Set("core_config.hidden_size", 99999)
	m.defaultFillLocked()

	v, found := m.Get("core_config.hidden_size")
	require.True(t, found)
	assert.Equal(t, 768, v)
}

func TestRegisterSchemaRefillsDefaultsForNewKeys(t *testing.T) {
	m := newTestManager(t)
	err := m.RegisterSchema(schema.Descriptor{Key: "core_config.random_seed", Type: schema.KindInt, Default: 42})
	require.NoError(t, err)

	v, found := m.Get("core_config.random_seed")
	require.True(t, found)
	assert.Equal(t, 42, v)
}

func TestTuneIsRollbackOnFailureBatch(t *testing.T) {
	m := newTestManager(t)
	ok := m.Tune(context.Background(), map[string]any{
		"logging_config.level":            "warn",
		"curiosity_config.weight_novelty": 2.0, // out of range
	})
	assert.False(t, ok)
	_, found := m.Get("logging_config.level")
	assert.False(t, found)
}

func TestLoadProfileAppliesRegisteredBundle(t *testing.T) {
	m := newTestManager(t)
	m.RegisterProfile("fast-inference", map[string]any{"logging_config.level": "error"})

	ok := m.LoadProfile(context.Background(), "fast-inference")
	require.True(t, ok)

	v, found := m.Get("logging_config.level")
	require.True(t, found)
	assert.Equal(t, "error", v)
}

func TestLoadProfileUnknownNameFails(t *testing.T) {
	m := newTestManager(t)
	ok := m.LoadProfile(context.Background(), "does-not-exist")
	assert.False(t, ok)
}

func TestValidateSectionReportsMissingFields(t *testing.T) {
	m := newTestManager(t)
	m.Update(context.Background(), "logging_config.level", "warn")

	failures := m.ValidateSection("logging_config", []string{"level", "format"})
	assert.NotContains(t, failures, "level")
	assert.Contains(t, failures, "format")
}

func TestValidateOrRaiseReportsMissingRequiredKey(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(
		schema.Descriptor{Key: "core_config.base_model_name", Type: schema.KindString, Required: true},
	))
	path := filepath.Join(t.TempDir(), "config.json")
	m := New(reg, Options{Path: path, MaxRetries: 1})

	err := m.ValidateOrRaise(ModelConfig{NumHiddenLayers: 12})
	assert.Error(t, err)
}

func TestValidateOrRaiseChecksCrossAttnLayerBounds(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(
		schema.Descriptor{Key: "core_config.cross_attn_layers", Type: schema.KindList},
	))
	path := filepath.Join(t.TempDir(), "config.json")
	m := New(reg, Options{Path: path, MaxRetries: 1})
	m.Update(context.Background(), "core_config.cross_attn_layers", []any{5, 7})

	assert.NoError(t, m.ValidateOrRaise(ModelConfig{NumHiddenLayers: 12}))
	assert.Error(t, m.ValidateOrRaise(ModelConfig{NumHiddenLayers: 6}))
}
