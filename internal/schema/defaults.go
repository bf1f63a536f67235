package schema

// DefaultDescriptors returns the full field catalog, grounded on
// sovl_config.py's DEFAULT_SCHEMA: every key the runtime substrate
// recognizes out of the box, across all seven sections.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		// core_config
		{Key: "core_config.base_model_name", Type: KindString, Default: "gpt2", Required: true},
		{Key: "core_config.scaffold_model_name", Type: KindString, Default: "gpt2", Required: true},
		{Key: "core_config.cross_attn_layers", Type: KindList, Default: []any{5, 7}, Predicate: AllElementsType(KindInt)},
		{Key: "core_config.use_dynamic_layers", Type: KindBool, Default: false},
		{Key: "core_config.layer_selection_mode", Type: KindString, Default: "balanced", Predicate: EnumOf("balanced", "random", "fixed")},
		{Key: "core_config.custom_layers", Type: KindList, Default: nil, Nullable: true, Predicate: AllElementsType(KindInt)},
		{Key: "core_config.valid_split_ratio", Type: KindFloat, Default: 0.2, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "core_config.random_seed", Type: KindInt, Default: 42, Range: &Range{Min: 0, Max: 4294967296}},
		{Key: "core_config.quantization", Type: KindString, Default: "fp16", Predicate: EnumOf("fp16", "int8", "fp32")},
		{Key: "core_config.hidden_size", Type: KindInt, Default: 768, Range: &Range{Min: 128, Max: 4096}},

		// lora_config
		{Key: "lora_config.lora_rank", Type: KindInt, Default: 8, Range: &Range{Min: 1, Max: 64}},
		{Key: "lora_config.lora_alpha", Type: KindInt, Default: 16, Range: &Range{Min: 1, Max: 128}},
		{Key: "lora_config.lora_dropout", Type: KindFloat, Default: 0.1, Range: &Range{Min: 0.0, Max: 0.5}},
		{Key: "lora_config.lora_target_modules", Type: KindList, Default: []any{"c_attn", "c_proj", "c_fc"}, Predicate: AllElementsType(KindString)},

		// training_config
		{Key: "training_config.learning_rate", Type: KindFloat, Default: 0.0003, Range: &Range{Min: 0.0, Max: 0.01}},
		{Key: "training_config.train_epochs", Type: KindInt, Default: 3, Range: &Range{Min: 1, Max: 10}},
		{Key: "training_config.batch_size", Type: KindInt, Default: 1, Range: &Range{Min: 1, Max: 64}},
		{Key: "training_config.max_seq_length", Type: KindInt, Default: 128, Range: &Range{Min: 64, Max: 2048}},
		{Key: "training_config.sigmoid_scale", Type: KindFloat, Default: 0.5, Range: &Range{Min: 0.1, Max: 10.0}},
		{Key: "training_config.sigmoid_shift", Type: KindFloat, Default: 5.0, Range: &Range{Min: 0.0, Max: 10.0}},
		{Key: "training_config.lifecycle_capacity_factor", Type: KindFloat, Default: 0.01, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "training_config.lifecycle_curve", Type: KindString, Default: "sigmoid_linear", Predicate: EnumOf("sigmoid_linear", "linear", "exponential")},
		{Key: "training_config.accumulation_steps", Type: KindInt, Default: 4, Range: &Range{Min: 1, Max: 16}},
		{Key: "training_config.exposure_gain_eager", Type: KindInt, Default: 3, Range: &Range{Min: 1, Max: 10}},
		{Key: "training_config.exposure_gain_default", Type: KindInt, Default: 2, Range: &Range{Min: 1, Max: 10}},
		{Key: "training_config.max_patience", Type: KindInt, Default: 2, Range: &Range{Min: 1, Max: 5}},
		{Key: "training_config.sleep_max_steps", Type: KindInt, Default: 100, Range: &Range{Min: 10, Max: 1000}},
		{Key: "training_config.lora_capacity", Type: KindInt, Default: 0, Range: &Range{Min: 0, Max: 1000}},
		{Key: "training_config.dry_run", Type: KindBool, Default: false},
		{Key: "training_config.dry_run_params.max_samples", Type: KindInt, Default: 2, Range: &Range{Min: 1, Max: 100}},
		{Key: "training_config.dry_run_params.max_length", Type: KindInt, Default: 128, Range: &Range{Min: 64, Max: 2048}},
		{Key: "training_config.dry_run_params.validate_architecture", Type: KindBool, Default: true},
		{Key: "training_config.dry_run_params.skip_training", Type: KindBool, Default: true},
		{Key: "training_config.weight_decay", Type: KindFloat, Default: 0.01, Range: &Range{Min: 0.0, Max: 0.1}},
		{Key: "training_config.total_steps", Type: KindInt, Default: 1000, Range: &Range{Min: 100, Max: 10000}},
		{Key: "training_config.max_grad_norm", Type: KindFloat, Default: 1.0, Range: &Range{Min: 0.1, Max: 10.0}},
		{Key: "training_config.use_amp", Type: KindBool, Default: true},
		{Key: "training_config.checkpoint_interval", Type: KindInt, Default: 1000, Range: &Range{Min: 100, Max: 10000}},
		{Key: "training_config.scheduler_type", Type: KindString, Default: "linear", Predicate: EnumOf("linear", "cosine", "constant")},
		{Key: "training_config.cosine_min_lr", Type: KindFloat, Default: 1e-6, Range: &Range{Min: 1e-7, Max: 1e-3}},
		{Key: "training_config.warmup_ratio", Type: KindFloat, Default: 0.1, Range: &Range{Min: 0.0, Max: 0.5}},
		{Key: "training_config.metrics_to_track", Type: KindList, Default: []any{"loss", "accuracy", "confidence"}, Predicate: AllElementsType(KindString)},
		{Key: "training_config.repetition_n", Type: KindInt, Default: 3, Range: &Range{Min: 1, Max: 10}},
		{Key: "training_config.checkpoint_path", Type: KindString, Default: "checkpoints/sovlcore_trainer"},
		{Key: "training_config.validate_every_n_steps", Type: KindInt, Default: 100, Range: &Range{Min: 10, Max: 1000}},

		// curiosity_config
		{Key: "curiosity_config.queue_maxlen", Type: KindInt, Default: 10, Range: &Range{Min: 1, Max: 50}},
		{Key: "curiosity_config.novelty_history_maxlen", Type: KindInt, Default: 20, Range: &Range{Min: 5, Max: 100}},
		{Key: "curiosity_config.decay_rate", Type: KindFloat, Default: 0.9, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "curiosity_config.attention_weight", Type: KindFloat, Default: 0.5, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "curiosity_config.question_timeout", Type: KindFloat, Default: 3600.0, Range: &Range{Min: 60.0, Max: 86400.0}},
		{Key: "curiosity_config.novelty_threshold_spontaneous", Type: KindFloat, Default: 0.9, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "curiosity_config.novelty_threshold_response", Type: KindFloat, Default: 0.8, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "curiosity_config.pressure_threshold", Type: KindFloat, Default: 0.7, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "curiosity_config.pressure_drop", Type: KindFloat, Default: 0.3, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "curiosity_config.silence_threshold", Type: KindFloat, Default: 20.0, Range: &Range{Min: 0.0, Max: 3600.0}},
		{Key: "curiosity_config.question_cooldown", Type: KindFloat, Default: 60.0, Range: &Range{Min: 0.0, Max: 3600.0}},
		{Key: "curiosity_config.weight_ignorance", Type: KindFloat, Default: 0.7, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "curiosity_config.weight_novelty", Type: KindFloat, Default: 0.3, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "curiosity_config.enable_curiosity", Type: KindBool, Default: true},

		// cross_attn_config
		{Key: "cross_attn_config.memory_weight", Type: KindFloat, Default: 0.5, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "cross_attn_config.dynamic_scale", Type: KindFloat, Default: 0.3, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "cross_attn_config.enable_dynamic", Type: KindBool, Default: true},
		{Key: "cross_attn_config.enable_memory", Type: KindBool, Default: true},

		// controls_config (temperament + memory + feature toggles)
		{Key: "controls_config.temp_eager_threshold", Type: KindFloat, Default: 0.8, Range: &Range{Min: 0.7, Max: 0.9}},
		{Key: "controls_config.temp_sluggish_threshold", Type: KindFloat, Default: 0.4, Range: &Range{Min: 0.3, Max: 0.6}},
		{Key: "controls_config.temp_mood_influence", Type: KindFloat, Default: 0.0, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "controls_config.temp_curiosity_boost", Type: KindFloat, Default: 0.2, Range: &Range{Min: 0.0, Max: 0.5}},
		{Key: "controls_config.temp_restless_drop", Type: KindFloat, Default: 0.2, Range: &Range{Min: 0.0, Max: 0.5}},
		{Key: "controls_config.temp_melancholy_noise", Type: KindFloat, Default: 0.05, Range: &Range{Min: 0.0, Max: 0.1}},
		{Key: "controls_config.conf_feedback_strength", Type: KindFloat, Default: 0.3, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "controls_config.temp_smoothing_factor", Type: KindFloat, Default: 0.5, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "controls_config.confidence_history_maxlen", Type: KindInt, Default: 5, Range: &Range{Min: 3, Max: 10}},
		{Key: "controls_config.temperament_history_maxlen", Type: KindInt, Default: 5, Range: &Range{Min: 3, Max: 10}},
		{Key: "controls_config.conversation_history_maxlen", Type: KindInt, Default: 10, Range: &Range{Min: 5, Max: 50}},
		{Key: "controls_config.max_seen_prompts", Type: KindInt, Default: 1000, Range: &Range{Min: 100, Max: 10000}},
		{Key: "controls_config.prompt_timeout", Type: KindFloat, Default: 86400.0, Range: &Range{Min: 3600.0, Max: 604800.0}},
		{Key: "controls_config.temperament_decay_rate", Type: KindFloat, Default: 0.1, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "controls_config.memory_threshold", Type: KindFloat, Default: 0.85, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "controls_config.memory_decay_rate", Type: KindFloat, Default: 0.95, Range: &Range{Min: 0.0, Max: 1.0}},
		{Key: "controls_config.use_scaffold_memory", Type: KindBool, Default: true},
		{Key: "controls_config.use_token_map_memory", Type: KindBool, Default: true},
		{Key: "controls_config.enable_temperament", Type: KindBool, Default: true},
		{Key: "controls_config.enable_confidence_tracking", Type: KindBool, Default: true},
		{Key: "controls_config.enable_lifecycle_weighting", Type: KindBool, Default: true},
		{Key: "controls_config.enable_error_listening", Type: KindBool, Default: true},
		{Key: "controls_config.save_path_prefix", Type: KindString, Default: "state", Predicate: RegexMatch(`^[a-zA-Z0-9_/.-]+$`)},

		// logging_config
		{Key: "logging_config.log_dir", Type: KindString, Default: "logs"},
		{Key: "logging_config.log_file", Type: KindString, Default: "sovlcore_logs.jsonl"},
		{Key: "logging_config.debug_log_file", Type: KindString, Default: "sovlcore_debug.log"},
		{Key: "logging_config.max_size_mb", Type: KindInt, Default: 10, Range: &Range{Min: 0, Max: 100}},
		{Key: "logging_config.compress_old", Type: KindBool, Default: false},
		{Key: "logging_config.max_in_memory_logs", Type: KindInt, Default: 1000, Range: &Range{Min: 100, Max: 10000}},
		{Key: "logging_config.schema_version", Type: KindString, Default: "1.1"},
	}
}
