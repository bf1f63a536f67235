package filebackend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmptyMap(t *testing.T) {
	b := New(nil)
	m := b.Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"), 2)
	assert.Empty(t, m)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	b := New(nil)
	path := filepath.Join(t.TempDir(), "config.json")

	ok := b.Save(context.Background(), map[string]any{"core_config.random_seed": float64(42)}, path, false, 1)
	require.True(t, ok)

	m := b.Load(context.Background(), path, 1)
	assert.Equal(t, float64(42), m["core_config.random_seed"])
}

func TestSaveGzipRoundTrip(t *testing.T) {
	b := New(nil)
	path := filepath.Join(t.TempDir(), "config.json.gz")

	ok := b.Save(context.Background(), map[string]any{"logging_config.level": "info"}, path, true, 1)
	require.True(t, ok)

	m := b.Load(context.Background(), path, 1)
	assert.Equal(t, "info", m["logging_config.level"])
}

func TestSaveRemovesTempFileOnSuccess(t *testing.T) {
	b := New(nil)
	path := filepath.Join(t.TempDir(), "config.json")

	ok := b.Save(context.Background(), map[string]any{"a": 1.0}, path, false, 1)
	require.True(t, ok)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
