// Package collab declares the external collaborator interfaces C5-C8
// depend on but never implement: embedding, long-term memory retrieval,
// question generation, memory health monitoring, and output delivery.
// spec.md §6 lists these as out-of-scope collaborators; modeling them as
// small interfaces lets the curiosity/cache/question components be built
// and tested against fakes without owning any ML runtime.
package collab

import "context"

// Embedder turns text into a fixed-dimension embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LongTermMemory returns the embedding of the best match for a query
// embedding, or ok=false if the store is empty.
type LongTermMemory interface {
	TopMatch(ctx context.Context, query []float32) (match []float32, ok bool, err error)
}

// Generator produces free-text completions, used to synthesize candidate
// internal questions from a meta-prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MemoryMonitor reports a 0-100 resource usage percentage (RAM or GPU).
// An error, or a reading outside [0, 100], is treated as "assume high
// usage" by callers, per the conservative fallback in the original
// source's _validate_usage_percentage.
type MemoryMonitor interface {
	Usage(ctx context.Context) (float64, error)
}

// OutputSink delivers a spontaneous question to the user and returns
// their captured response, if any.
type OutputSink interface {
	AskUser(ctx context.Context, question string) (response string, ok bool, err error)
}

// Scribe records structured events for audit/history purposes,
// independent of the slog logger used for operational logging.
type Scribe interface {
	Record(ctx context.Context, event string, fields map[string]any)
}
