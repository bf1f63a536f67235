package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePathPrefersFlagOverEnv(t *testing.T) {
	t.Setenv("SOVL_CONFIG_FILE", "/from/env.json")
	cfgFile = "/from/flag.json"
	defer func() { cfgFile = "" }()

	assert.Equal(t, "/from/flag.json", resolvePath())
}

func TestResolvePathFallsBackToEnv(t *testing.T) {
	t.Setenv("SOVL_CONFIG_FILE", "/from/env.json")
	cfgFile = ""

	assert.Equal(t, "/from/env.json", resolvePath())
}

func TestResolvePathDefaultsWhenNothingSet(t *testing.T) {
	os.Unsetenv("SOVL_CONFIG_FILE")
	cfgFile = ""

	assert.Equal(t, "sovl_config.json", resolvePath())
}

func TestFrozenMarkerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	assert.False(t, frozenMarkerExists(path))

	require := os.WriteFile(frozenMarkerPath(path), []byte{}, 0o644)
	assert.NoError(t, require)
	assert.True(t, frozenMarkerExists(path))
}
