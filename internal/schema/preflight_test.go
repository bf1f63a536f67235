package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreflightAcceptsCompleteSnapshot(t *testing.T) {
	err := Preflight(CoreSnapshot{
		BaseModelName:      "gpt2",
		ScaffoldModelName:  "gpt2",
		LayerSelectionMode: "balanced",
		HiddenSize:         768,
	})
	assert.NoError(t, err)
}

func TestPreflightRejectsMissingModelName(t *testing.T) {
	err := Preflight(CoreSnapshot{
		ScaffoldModelName:  "gpt2",
		LayerSelectionMode: "balanced",
		HiddenSize:         768,
	})
	assert.Error(t, err)
}

func TestPreflightRejectsUnknownLayerSelectionMode(t *testing.T) {
	err := Preflight(CoreSnapshot{
		BaseModelName:      "gpt2",
		ScaffoldModelName:  "gpt2",
		LayerSelectionMode: "chaotic",
		HiddenSize:         768,
	})
	assert.Error(t, err)
}

func TestCoreSnapshotFromFlatExtractsFields(t *testing.T) {
	flat := map[string]any{
		"core_config.base_model_name":      "gpt2",
		"core_config.scaffold_model_name":  "gpt2",
		"core_config.layer_selection_mode": "balanced",
		"core_config.hidden_size":          float64(768), // JSON-decoded numbers land as float64
	}
	snap := CoreSnapshotFromFlat(flat)
	assert.Equal(t, 768, snap.HiddenSize)
	assert.NoError(t, Preflight(snap))
}
