// Package filebackend implements C3: durable load/save of the flat
// config map to a JSON file, optionally gzip-compressed, with bounded
// retry and atomic writes.
//
// Grounded on internal/core/resilience/retry.go's retry engine from the
// teacher repo, invoked here with a fixed-delay policy (Multiplier: 1,
// Jitter: false) to match spec.md §4.3's "retry with a 100ms backoff, up
// to max_retries" contract rather than the teacher's exponential default.
package filebackend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/yourorg/sovlcore/internal/core/resilience"
)

// fixedDelayPolicy returns a RetryPolicy whose delay never grows: every
// attempt after the first waits the same 100ms, matching the original
// Python backend's time.sleep(0.1) retry loop.
func fixedDelayPolicy(maxRetries int, logger *slog.Logger) *resilience.RetryPolicy {
	return &resilience.RetryPolicy{
		MaxRetries: maxRetries,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
		Multiplier: 1.0,
		Jitter:     false,
		Logger:     logger,
	}
}

// Backend loads and saves the flat config map to a JSON (optionally
// gzip'd) file.
type Backend struct {
	logger *slog.Logger
}

// New returns a Backend. A nil logger defaults to slog.Default().
func New(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

// isGzipPath reports whether path's suffix indicates gzip compression.
func isGzipPath(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// Load reads the flat config map from path. A missing file yields an
// empty map and no error, matching spec.md §4.3. Read/decode failures are
// retried up to maxRetries times with a fixed 100ms delay; if every
// attempt fails, Load also returns an empty map rather than an error, per
// the original backend's fail-open behavior.
func (b *Backend) Load(ctx context.Context, path string, maxRetries int) map[string]any {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return map[string]any{}
	}

	var result map[string]any
	policy := fixedDelayPolicy(maxRetries, b.logger)
	policy.OperationName = "filebackend.load"

	err := resilience.WithRetry(ctx, policy, func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if isGzipPath(path) {
			data, err = gunzip(data)
			if err != nil {
				return err
			}
		}
		m := make(map[string]any)
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		result = m
		return nil
	})

	if err != nil {
		b.logger.Error("filebackend: load failed after retries, returning empty config", "path", path, "error", err)
		return map[string]any{}
	}
	return result
}

// Save writes config to path as JSON (gzip'd if compress is true), via a
// temp file ("path.tmp") followed by an atomic rename. The temp file is
// removed on failure. Write failures are retried up to maxRetries times
// with a fixed 100ms delay. Returns true on success.
func (b *Backend) Save(ctx context.Context, config map[string]any, path string, compress bool, maxRetries int) bool {
	policy := fixedDelayPolicy(maxRetries, b.logger)
	policy.OperationName = "filebackend.save"

	tmpPath := path + ".tmp"

	err := resilience.WithRetry(ctx, policy, func() error {
		data, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return err
		}
		if compress {
			data, err = gzipBytes(data)
			if err != nil {
				return err
			}
		}
		if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
			return err
		}
		if err := os.Rename(tmpPath, path); err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
		return nil
	})

	if err != nil {
		b.logger.Error("filebackend: save failed after retries", "path", path, "error", err)
		_ = os.Remove(tmpPath)
		return false
	}
	return true
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
