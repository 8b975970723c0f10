package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerServiceDefaults(t *testing.T) {
	svc := NewLayerService(t.TempDir())

	layers := svc.List()
	require.Len(t, layers, 5)

	// catalog order is stable
	ids := make([]string, len(layers))
	for i, l := range layers {
		ids[i] = l.ID
	}
	assert.Equal(t, []string{"districts", "sectors", "urban_rural", "housing_deficit", "residences"}, ids)

	districts, ok := svc.Get("districts")
	require.True(t, ok)
	assert.True(t, districts.BlackBorder)
	assert.True(t, districts.DefaultVisible)

	residences, ok := svc.Get("residences")
	require.True(t, ok)
	assert.True(t, residences.Projected)
	assert.Equal(t, "point", residences.GeomType)
}

func TestLayerServiceThematicLayer(t *testing.T) {
	svc := NewLayerService(t.TempDir())

	tl, ok := svc.ThematicLayer()
	require.True(t, ok)
	assert.Equal(t, "sectors", tl.ID)
}

func TestLayerServiceUpdate(t *testing.T) {
	dataDir := t.TempDir()
	svc := NewLayerService(dataDir)

	cfg, _ := svc.Get("districts")
	cfg.Opacity = 0.5
	updated, err := svc.Update("districts", cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.5, updated.Opacity)
	assert.Equal(t, "districts", updated.ID, "ID comes from the path, not the body")

	_, err = svc.Update("ghost", cfg)
	assert.Error(t, err)

	// the catalog file was written and a fresh service reads it back
	_, err = os.Stat(filepath.Join(dataDir, "layers.yaml"))
	require.NoError(t, err)

	reloaded := NewLayerService(dataDir)
	got, ok := reloaded.Get("districts")
	require.True(t, ok)
	assert.Equal(t, 0.5, got.Opacity)
	assert.Len(t, reloaded.List(), 5)
}

func TestLayerServiceCorruptCatalog(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "layers.yaml"), []byte("{not yaml"), 0644))

	svc := NewLayerService(dataDir)
	assert.Len(t, svc.List(), 5, "falls back to the default catalog")
}
