// Package configmanager implements C4: the single mutex-guarded
// coordinator in front of the schema registry (C1), config store (C2),
// and file backend (C3).
//
// Grounded on internal/config/update_service.go's UpdateConfig/
// RollbackConfig/calculateHash/calculateDiff pattern from the teacher
// repo (snapshot before validating, apply after every key validates,
// sha256-prefix change hash, symmetric diff), generalized from its fixed
// Config struct to the dynamic dotted-key registry this module uses, and
// on internal/realtime/bus.go's subscriber-map-plus-mutex registration
// shape for Subscribe/Unsubscribe.
package configmanager

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/sovlcore/internal/configstore"
	"github.com/yourorg/sovlcore/internal/filebackend"
	"github.com/yourorg/sovlcore/internal/schema"
	"github.com/yourorg/sovlcore/pkg/metrics"
)

// ErrFrozen is returned when a mutating operation is attempted while the
// manager is frozen.
var ErrFrozen = fmt.Errorf("configmanager: frozen")

// Subscription is the handle returned by Subscribe, passed back to
// Unsubscribe to remove exactly that registration.
type Subscription struct {
	id string
}

// Snapshot is the serializable manager state used by State/LoadState.
type Snapshot struct {
	File   string
	Config map[string]any
	Frozen bool
	Hash   string
}

// Manager coordinates the schema registry, config store, and file
// backend behind a single mutex. Every exported method takes or releases
// that mutex; none of its collaborators lock on their own.
type Manager struct {
	mu sync.Mutex

	registry *schema.Registry
	store    *configstore.Store
	backend  *filebackend.Backend

	path       string
	compress   bool
	maxRetries int

	frozen bool
	hash   string

	subscribers map[string]func(changed map[string]any)
	profiles    map[string]map[string]any

	logger  *slog.Logger
	metrics *metrics.ConfigMetrics
}

// Options configures a new Manager.
type Options struct {
	Path       string
	Compress   bool
	MaxRetries int
	Logger     *slog.Logger
	// Profiles seeds named preset bundles usable via LoadProfile. More
	// can be added later with RegisterProfile.
	Profiles map[string]map[string]any
}

// New constructs a Manager with an empty store and the given registry.
func New(registry *schema.Registry, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	profiles := make(map[string]map[string]any, len(opts.Profiles))
	for name, kv := range opts.Profiles {
		profiles[name] = kv
	}
	m := &Manager{
		registry:    registry,
		store:       configstore.New(),
		backend:     filebackend.New(logger),
		path:        opts.Path,
		compress:    opts.Compress,
		maxRetries:  maxRetries,
		subscribers: make(map[string]func(map[string]any)),
		profiles:    profiles,
		logger:      logger,
		metrics:     metrics.NewConfigMetrics(),
	}
	m.defaultFillLocked()
	m.hash = m.computeHashLocked()
	return m
}

// Load populates the store from the file backend at the manager's path,
// then runs the default-fill pass so every registered key ends up
// present and valid regardless of what was (or wasn't) on disk. It also
// runs a cheap struct-tag preflight over the core fields: a failure here
// is logged, not fatal, since the dotted-key registry validation (the
// default-fill pass above, and every subsequent Update) is the real
// authority on whether the loaded config is usable.
func (m *Manager) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flat := m.backend.Load(ctx, m.path, m.maxRetries)
	m.store.LoadFlat(flat)
	m.defaultFillLocked()
	m.hash = m.computeHashLocked()

	if err := schema.Preflight(schema.CoreSnapshotFromFlat(flat)); err != nil {
		m.logger.Warn("configmanager: core config preflight failed", "error", err)
	}
}

// defaultFillLocked walks every key in the registry and ensures the
// store holds a valid value for it: a key absent from the store is
// populated with its descriptor default (a key with no default that is
// not nullable is left absent); a key present but invalid
// against the current schema is replaced with its default and logged as
// a warning. Must be called while m.mu is held. Matches spec.md §3's
// initialization invariant and §4.4's "re-run default-filling on new
// fields" requirement for RegisterSchema.
func (m *Manager) defaultFillLocked() {
	for _, key := range m.registry.Keys() {
		desc, ok := m.registry.Get(key)
		if !ok {
			continue
		}
		value, present := m.store.Get(key)
		if !present {
			if desc.Default != nil || desc.Nullable {
				m.store.Set(key, desc.Default)
			}
			continue
		}
		if _, err := m.registry.Validate(key, value); err != nil {
			m.logger.Warn("configmanager: invalid stored value replaced with default", "key", key, "value", value, "error", err)
			m.store.Set(key, desc.Default)
		}
	}
}

// Get returns the value at key.
func (m *Manager) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Get(key)
}

// GetSection returns a copy of the structured subtree for section.
func (m *Manager) GetSection(section string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.GetSection(section)
}

// ValidateKeys validates each key against its current stored value,
// without mutating the store. The returned map contains only the keys
// that failed, mapped to their error.
func (m *Manager) ValidateKeys(keys []string) map[string]error {
	m.mu.Lock()
	defer m.mu.Unlock()

	failures := make(map[string]error)
	for _, key := range keys {
		value, _ := m.store.Get(key)
		if _, err := m.registry.Validate(key, value); err != nil {
			failures[key] = err
		}
	}
	return failures
}

// Update validates and applies a single key/value pair, then persists
// and notifies subscribers. Returns false if the manager is frozen or the
// value fails validation; no partial state change occurs in that case.
func (m *Manager) Update(ctx context.Context, key string, value any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLocked(ctx, key, value)
}

func (m *Manager) updateLocked(ctx context.Context, key string, value any) bool {
	if m.frozen {
		m.metrics.UpdatesTotal.WithLabelValues("frozen").Inc()
		return false
	}
	coerced, err := m.registry.Validate(key, value)
	if err != nil {
		m.logger.Warn("configmanager: update rejected", "key", key, "error", err)
		m.metrics.UpdatesTotal.WithLabelValues("invalid").Inc()
		return false
	}
	m.store.Set(key, coerced)
	m.persistAndNotifyLocked(ctx, map[string]any{key: coerced})
	m.metrics.UpdatesTotal.WithLabelValues("success").Inc()
	return true
}

// UpdateBatch validates every update before applying any of them. If any
// key fails validation, no change is applied (rollbackOnFailure has no
// effect on this path, since nothing was ever applied). If
// rollbackOnFailure is true and persistence fails after all updates are
// applied, the store is restored to its pre-batch snapshot, the
// structured tree and cache are rebuilt, and the hash is recomputed.
func (m *Manager) UpdateBatch(ctx context.Context, updates map[string]any, rollbackOnFailure bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.frozen {
		return false
	}

	snapshot := m.store.Flat()

	coercedUpdates := make(map[string]any, len(updates))
	for key, value := range updates {
		coerced, err := m.registry.Validate(key, value)
		if err != nil {
			m.logger.Warn("configmanager: batch update rejected", "key", key, "error", err)
			return false
		}
		coercedUpdates[key] = coerced
	}

	for key, value := range coercedUpdates {
		m.store.Set(key, value)
	}

	if !m.persistAndNotifyLocked(ctx, coercedUpdates) {
		if rollbackOnFailure {
			m.store.LoadFlat(snapshot)
			m.hash = m.computeHashLocked()
			m.metrics.RollbacksTotal.Inc()
			m.logger.Error("configmanager: batch persist failed, rolled back")
		}
		return false
	}

	return true
}

// Save persists the current flat map to the file backend.
func (m *Manager) Save(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Save(ctx, m.store.Flat(), m.path, m.compress, m.maxRetries)
}

// persistAndNotifyLocked saves to disk, recomputes the change hash on
// success, and notifies subscribers while still holding the lock, per
// spec.md §5. Each callback is isolated: a panic is recovered and logged,
// never surfaced to the caller or to other subscribers.
func (m *Manager) persistAndNotifyLocked(ctx context.Context, changed map[string]any) bool {
	if !m.backend.Save(ctx, m.store.Flat(), m.path, m.compress, m.maxRetries) {
		return false
	}
	m.hash = m.computeHashLocked()
	m.notifyLocked(changed)
	return true
}

func (m *Manager) notifyLocked(changed map[string]any) {
	for id, cb := range m.subscribers {
		m.invokeSubscriber(id, cb, changed)
	}
}

func (m *Manager) invokeSubscriber(id string, cb func(map[string]any), changed map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("configmanager: subscriber callback panicked", "subscriber", id, "panic", r)
			m.metrics.SubscriberCalls.WithLabelValues("panic").Inc()
		}
	}()
	cb(changed)
	m.metrics.SubscriberCalls.WithLabelValues("ok").Inc()
}

// RegisterSchema adds descriptors to the registry and re-runs the
// default-fill pass so any newly registered field lands in the store
// immediately, per spec.md §4.4. Forbidden while frozen.
func (m *Manager) RegisterSchema(descs ...schema.Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		return ErrFrozen
	}
	if err := m.registry.Register(descs...); err != nil {
		return err
	}
	m.defaultFillLocked()
	m.hash = m.computeHashLocked()
	return nil
}

// Tune is a convenience wrapper over UpdateBatch with
// rollbackOnFailure=true, grounded in sovl_config.py's tune(**kwargs).
func (m *Manager) Tune(ctx context.Context, updates map[string]any) bool {
	return m.UpdateBatch(ctx, updates, true)
}

// RegisterProfile adds (or replaces) a named preset bundle usable with
// LoadProfile.
func (m *Manager) RegisterProfile(name string, kv map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]any, len(kv))
	for k, v := range kv {
		cp[k] = v
	}
	m.profiles[name] = cp
}

// LoadProfile applies a previously registered named bundle of preset
// key/value pairs as one rollback-on-failure batch update. Returns false
// if the profile is unknown or the batch update fails.
func (m *Manager) LoadProfile(ctx context.Context, name string) bool {
	m.mu.Lock()
	profile, ok := m.profiles[name]
	m.mu.Unlock()
	if !ok {
		m.logger.Warn("configmanager: unknown profile", "name", name)
		return false
	}
	return m.UpdateBatch(ctx, profile, true)
}

// SetGlobalBlend sets cross_attn_config.blend_strength and
// controls_config.base_temperature together as a single batch update,
// from sovl_config.py's set_global_blend.
func (m *Manager) SetGlobalBlend(ctx context.Context, weightCap, baseTemp float64) bool {
	return m.UpdateBatch(ctx, map[string]any{
		"cross_attn_config.blend_strength": weightCap,
		"controls_config.base_temperature": baseTemp,
	}, true)
}

// ValidateSection checks that each of requiredKeys is present as a
// field of section's structured subtree, without mutating the store.
// Complements the whole-manager ValidateKeys with a per-section check
// against field names rather than full dotted keys.
func (m *Manager) ValidateSection(section string, requiredKeys []string) map[string]error {
	m.mu.Lock()
	defer m.mu.Unlock()

	failures := make(map[string]error)
	fields, ok := m.store.GetSection(section)
	for _, field := range requiredKeys {
		if !ok {
			failures[field] = fmt.Errorf("configmanager: section %q not found", section)
			continue
		}
		if _, present := fields[field]; !present {
			failures[field] = fmt.Errorf("configmanager: required field %q missing from section %q", field, section)
		}
	}
	return failures
}

// ModelConfig carries the model-shape facts ValidateOrRaise needs in
// order to bound-check core_config.cross_attn_layers.
type ModelConfig struct {
	NumHiddenLayers int
}

// ValidateOrRaise is the spec.md §7 "re-raise" preflight surface,
// grounded in sovl_config.py's validate_or_raise: unlike ValidateKeys,
// which only reports failures, and schema.Preflight, which only logs,
// this returns a non-nil error covering every required schema key
// missing or invalid in the store, plus every
// core_config.cross_attn_layers index outside
// [0, modelConfig.NumHiddenLayers).
func (m *Manager) ValidateOrRaise(modelConfig ModelConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, key := range m.registry.Keys() {
		desc, ok := m.registry.Get(key)
		if !ok || !desc.Required {
			continue
		}
		value, present := m.store.Get(key)
		if !present {
			errs = append(errs, fmt.Errorf("required key %q is missing", key))
			continue
		}
		if _, err := m.registry.Validate(key, value); err != nil {
			errs = append(errs, fmt.Errorf("required key %q is invalid: %w", key, err))
		}
	}

	if raw, present := m.store.Get("core_config.cross_attn_layers"); present {
		if layers, ok := raw.([]any); ok {
			for _, l := range layers {
				idx, ok := toInt(l)
				if !ok || idx < 0 || idx >= modelConfig.NumHiddenLayers {
					errs = append(errs, fmt.Errorf("core_config.cross_attn_layers index %v is out of range [0, %d)", l, modelConfig.NumHiddenLayers))
				}
			}
		}
	}

	return errors.Join(errs...)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Freeze prevents further mutation (Update, UpdateBatch, RegisterSchema).
func (m *Manager) Freeze() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frozen = true
	m.metrics.FreezeToggles.WithLabelValues("frozen").Inc()
}

// Unfreeze re-enables mutation.
func (m *Manager) Unfreeze() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frozen = false
	m.metrics.FreezeToggles.WithLabelValues("unfrozen").Inc()
}

// Frozen reports whether the manager currently rejects mutation.
func (m *Manager) Frozen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frozen
}

// Diff returns the symmetric difference between the current flat map and
// other: every key present in exactly one of the two maps, or present in
// both with different values.
func (m *Manager) Diff(other map[string]any) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := make(map[string]any)
	current := m.store.Flat()

	for key, value := range current {
		if ov, ok := other[key]; !ok || !valuesEqual(ov, value) {
			changed[key] = value
		}
	}
	for key, value := range other {
		if _, ok := current[key]; !ok {
			changed[key] = value
		}
	}
	return changed
}

func valuesEqual(a, b any) bool {
	aj, aerr := json.Marshal(a)
	bj, berr := json.Marshal(b)
	if aerr != nil || berr != nil {
		return false
	}
	return string(aj) == string(bj)
}

// Subscribe registers a callback invoked (while the manager's lock is
// held) with the set of keys changed by each successful Update/
// UpdateBatch call. The returned Subscription is used to Unsubscribe.
func (m *Manager) Subscribe(callback func(changed map[string]any)) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.subscribers[id] = callback
	return Subscription{id: id}
}

// Unsubscribe removes a previously registered callback. Unsubscribing an
// already-removed or unknown subscription is a no-op.
func (m *Manager) Unsubscribe(sub Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, sub.id)
}

// State returns a snapshot of the manager suitable for LoadState.
func (m *Manager) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		File:   m.path,
		Config: m.store.Flat(),
		Frozen: m.frozen,
		Hash:   m.hash,
	}
}

// LoadState restores the manager from a previously captured Snapshot.
func (m *Manager) LoadState(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.path = snap.File
	m.store.LoadFlat(snap.Config)
	m.frozen = snap.Frozen
	m.hash = m.computeHashLocked()
}

// Hash returns the current 16-hex-char change hash.
func (m *Manager) Hash() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hash
}

// computeHashLocked recomputes the sha256-prefix change hash over the
// flat map, serialized with sorted keys for determinism.
func (m *Manager) computeHashLocked() string {
	flat := m.store.Flat()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=", k)
		b, _ := json.Marshal(flat[k])
		h.Write(b)
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
