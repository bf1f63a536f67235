package schema

import "github.com/go-playground/validator/v10"

// CoreSnapshot is a typed, struct-tag-validated view of the handful of
// top-level fields that must be sane before the dynamic registry is
// even worth consulting (a config file with an empty model name or an
// out-of-range hidden size is corrupt, not merely unvalidated). It
// complements, rather than replaces, Registry.Validate: the registry is
// the source of truth for every dotted key, but a struct-tag pass gives
// callers a single cheap check to run immediately after a file load.
type CoreSnapshot struct {
	BaseModelName      string `validate:"required"`
	ScaffoldModelName  string `validate:"required"`
	LayerSelectionMode string `validate:"required,oneof=balanced random fixed"`
	HiddenSize         int    `validate:"required,min=128,max=4096"`
}

var preflightValidator = validator.New()

// Preflight runs the struct-tag checks over snap, returning the
// validator's own field-level errors unwrapped so callers don't need to
// import the validator package themselves.
func Preflight(snap CoreSnapshot) error {
	if err := preflightValidator.Struct(snap); err != nil {
		return err
	}
	return nil
}

// CoreSnapshotFromFlat extracts a CoreSnapshot from a flat dotted-key
// map, defaulting missing fields to their zero value so Preflight can
// report exactly which one is missing.
func CoreSnapshotFromFlat(flat map[string]any) CoreSnapshot {
	return CoreSnapshot{
		BaseModelName:      stringAt(flat, "core_config.base_model_name"),
		ScaffoldModelName:  stringAt(flat, "core_config.scaffold_model_name"),
		LayerSelectionMode: stringAt(flat, "core_config.layer_selection_mode"),
		HiddenSize:         intAt(flat, "core_config.hidden_size"),
	}
}

func stringAt(flat map[string]any, key string) string {
	s, _ := flat[key].(string)
	return s
}

func intAt(flat map[string]any, key string) int {
	switch v := flat[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
