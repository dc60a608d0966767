package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettingsStore_DefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSettingsStore(dir)
	require.NoError(t, err)

	settings := store.Settings()
	assert.Equal(t, 3, settings.Ingest.RetryMax)
	assert.Equal(t, 100, settings.Analysis.ImageMaxChars)
	assert.Equal(t, 300, settings.Analysis.DPIMax)
}

func TestSettingsStore_LoadOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
[ingest]
retry_max = 7
backoff_base_seconds = 0.5

[analysis]
image_max_chars = 50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(content), 0600))

	store, err := NewSettingsStore(dir)
	require.NoError(t, err)

	settings := store.Settings()
	assert.Equal(t, 7, settings.Ingest.RetryMax)
	assert.InDelta(t, 0.5, settings.Ingest.BackoffBaseSeconds, 1e-9)
	assert.Equal(t, 50, settings.Analysis.ImageMaxChars)

	// Unset values keep their defaults
	assert.Equal(t, 1000, settings.Analysis.TextMinChars)
}

func TestSettingsStore_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSettingsStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save())

	reloaded, err := NewSettingsStore(dir)
	require.NoError(t, err)
	assert.Equal(t, store.Settings(), reloaded.Settings())
}

func TestSettingsStore_KnownEntitiesRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSettingsStore(dir)
	require.NoError(t, err)
	store.settings.Analysis.KnownNames = []string{"Jane Smith"}
	store.settings.Analysis.KnownPlaces = []string{"Palm Beach, FL"}
	require.NoError(t, store.Save())

	reloaded, err := NewSettingsStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Smith"}, reloaded.Settings().Analysis.KnownNames)
	assert.Equal(t, []string{"Palm Beach, FL"}, reloaded.Settings().Analysis.KnownPlaces)
}
