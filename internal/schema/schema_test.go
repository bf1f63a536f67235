package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsBadKeyShape(t *testing.T) {
	r := NewRegistry()
	err := r.Register(Descriptor{Key: "a.b.c", Type: KindString})
	assert.Error(t, err)

	err = r.Register(Descriptor{Key: "training_config.dry_run_params.enabled", Type: KindBool})
	assert.NoError(t, err)
}

func TestValidateUnknownKey(t *testing.T) {
	r := NewRegistry()
	_, err := r.Validate("nope.nope", 1)
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, ErrUnknownKey, ve.Kind)
}

func TestValidateOrderUnknownBeforeType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Validate("missing.key", "wrong-type-but-irrelevant")
	ve := err.(*ValidationError)
	assert.Equal(t, ErrUnknownKey, ve.Kind)
}

func TestValidateRequiredNull(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{Key: "core_config.base_model_name", Type: KindString, Required: true}))
	_, err := r.Validate("core_config.base_model_name", nil)
	ve := err.(*ValidationError)
	assert.Equal(t, ErrMissingRequired, ve.Kind)
}

func TestValidateNullableAllowsNil(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{Key: "core_config.scaffold_model_name", Type: KindString, Nullable: true}))
	v, err := r.Validate("core_config.scaffold_model_name", nil)
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestValidateTypeMismatch(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{Key: "controls_config.base_temperature", Type: KindFloat}))
	_, err := r.Validate("controls_config.base_temperature", "not-a-number")
	ve := err.(*ValidationError)
	assert.Equal(t, ErrTypeMismatch, ve.Kind)
}

func TestValidateRange(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{
		Key: "curiosity_config.weight_novelty", Type: KindFloat,
		Range: &Range{Min: 0, Max: 1},
	}))
	_, err := r.Validate("curiosity_config.weight_novelty", 1.5)
	ve := err.(*ValidationError)
	assert.Equal(t, ErrOutOfRange, ve.Kind)

	v, err := r.Validate("curiosity_config.weight_novelty", 0.3)
	require.NoError(t, err)
	assert.Equal(t, 0.3, v)
}

func TestValidatePredicateEnum(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{
		Key: "logging_config.level", Type: KindString,
		Predicate: EnumOf("debug", "info", "warn", "error"),
	}))
	_, err := r.Validate("logging_config.level", "trace")
	ve := err.(*ValidationError)
	assert.Equal(t, ErrPredicateFailure, ve.Kind)

	v, err := r.Validate("logging_config.level", "info")
	require.NoError(t, err)
	assert.Equal(t, "info", v)
}

func TestValidatePredicateBeforeRange(t *testing.T) {
	// predicate runs before range per the fixed 5-step order
	r := NewRegistry()
	calls := []string{}
	require.NoError(t, r.Register(Descriptor{
		Key:  "training_config.dry_run_params.max_samples",
		Type: KindInt,
		Predicate: Func("track", func(v any) bool {
			calls = append(calls, "predicate")
			return true
		}),
		Range: &Range{Min: 0, Max: 100},
	}))
	_, err := r.Validate("training_config.dry_run_params.max_samples", 200)
	require.Error(t, err)
	assert.Equal(t, []string{"predicate"}, calls)
	ve := err.(*ValidationError)
	assert.Equal(t, ErrOutOfRange, ve.Kind)
}

func TestIntCoercionFromFloat64(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{Key: "core_config.random_seed", Type: KindInt}))
	v, err := r.Validate("core_config.random_seed", float64(42))
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestAllElementsTypePredicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{
		Key: "core_config.cross_attn_layers", Type: KindList,
		Predicate: AllElementsType(KindInt),
	}))
	v, err := r.Validate("core_config.cross_attn_layers", []any{1, 2, float64(3)})
	require.NoError(t, err)
	assert.Len(t, v, 3)

	_, err = r.Validate("core_config.cross_attn_layers", []any{1, "bad"})
	ve := err.(*ValidationError)
	assert.Equal(t, ErrPredicateFailure, ve.Kind)
}
