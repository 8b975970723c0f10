package service

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSectors writes a small census-sector collection under
// dataDir/sources and returns its layer config. Population values cover
// every coercion path: plain numbers, a numeric string, and a missing value.
func writeSectors(t *testing.T, dataDir string) LayerConfig {
	t.Helper()

	fc := geojson.NewFeatureCollection()
	populations := []any{100.0, 200.0, "300", 400.0, nil, 600.0}
	for i, pop := range populations {
		x := float64(i)
		f := geojson.NewFeature(orb.Polygon{{{x, 0}, {x + 1, 0}, {x + 1, 1}, {x, 0}}})
		f.Properties["sector_code"] = i
		if pop != nil {
			f.Properties["population"] = pop
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	require.NoError(t, err)

	sourcesDir := filepath.Join(dataDir, "sources")
	require.NoError(t, os.MkdirAll(sourcesDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sourcesDir, "sectors.geojson"), data, 0644))

	return LayerConfig{
		ID:       "sectors",
		Name:     "Census sectors",
		File:     "sectors.geojson",
		GeomType: "polygon",
		Fill:     "#31a354",
		Opacity:  0.3,
		Thematic: true,
	}
}

func TestStoreLoad(t *testing.T) {
	dataDir := t.TempDir()
	cfg := writeSectors(t, dataDir)
	store := NewFeatureStore(dataDir, nil, nil)

	ld, err := store.Load(cfg)
	require.NoError(t, err)
	assert.Len(t, ld.Collection.Features, 6)
	assert.Len(t, ld.Styles, 6)
	assert.True(t, store.Loaded("sectors"))

	// every feature starts with the layer default style
	for _, s := range ld.Styles {
		assert.Equal(t, "#31a354", s.FillColor)
	}
}

func TestStoreLoadIdempotent(t *testing.T) {
	dataDir := t.TempDir()
	cfg := writeSectors(t, dataDir)
	store := NewFeatureStore(dataDir, nil, nil)

	first, err := store.Load(cfg)
	require.NoError(t, err)

	// deleting the source must not matter: the second load is served from
	// memory
	require.NoError(t, os.Remove(filepath.Join(dataDir, "sources", "sectors.geojson")))

	second, err := store.Load(cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewFeatureStore(t.TempDir(), nil, nil)
	_, err := store.Load(LayerConfig{ID: "x", Name: "Missing", File: "missing.geojson"})
	assert.Error(t, err)
	assert.False(t, store.Loaded("x"))
}

func TestStoreUnload(t *testing.T) {
	dataDir := t.TempDir()
	cfg := writeSectors(t, dataDir)
	store := NewFeatureStore(dataDir, nil, nil)

	_, err := store.Load(cfg)
	require.NoError(t, err)

	store.Unload("sectors")
	assert.False(t, store.Loaded("sectors"))

	// unloading twice is a no-op
	store.Unload("sectors")
}

func TestStoreLoadPublishesEvent(t *testing.T) {
	dataDir := t.TempDir()
	cfg := writeSectors(t, dataDir)
	bus := NewEventBus()
	store := NewFeatureStore(dataDir, bus, nil)

	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	// every real load announces itself, whichever entry point asked
	_, err := store.Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, Event{Resource: "layers", Action: "loaded", ID: "sectors"}, <-ch)

	// a cached load is silent
	_, err = store.Load(cfg)
	require.NoError(t, err)
	assert.Empty(t, ch)

	store.Unload("sectors")
	assert.Equal(t, Event{Resource: "layers", Action: "unloaded", ID: "sectors"}, <-ch)

	// unloading an absent layer is silent
	store.Unload("sectors")
	assert.Empty(t, ch)
}

func TestStoreStylesSnapshot(t *testing.T) {
	dataDir := t.TempDir()
	cfg := writeSectors(t, dataDir)
	store := NewFeatureStore(dataDir, nil, nil)

	_, ok := store.StylesSnapshot("sectors")
	assert.False(t, ok, "not loaded yet")

	ld, err := store.Load(cfg)
	require.NoError(t, err)

	snap, ok := store.StylesSnapshot("sectors")
	require.True(t, ok)
	require.Len(t, snap, len(ld.Collection.Features))

	// the snapshot is a copy: mutating it never reaches the store
	snap[0].FillColor = "#badbad"
	again, _ := store.StylesSnapshot("sectors")
	assert.Equal(t, "#31a354", again[0].FillColor)
}

func TestStoreSetStyles(t *testing.T) {
	dataDir := t.TempDir()
	cfg := writeSectors(t, dataDir)
	store := NewFeatureStore(dataDir, nil, nil)

	ld, err := store.Load(cfg)
	require.NoError(t, err)

	styles := make([]FeatureStyle, len(ld.Collection.Features))
	require.NoError(t, store.SetStyles("sectors", styles))

	assert.Error(t, store.SetStyles("sectors", styles[:2]), "length mismatch")
	assert.Error(t, store.SetStyles("ghost", styles), "unknown layer")
}

func TestNumericValue(t *testing.T) {
	props := geojson.Properties{
		"float":   42.5,
		"int":     int(7),
		"int64":   int64(9),
		"float32": float32(1.5),
		"str":     "300",
		"strf":    "12.75",
		"badstr":  "n/a",
		"bool":    true,
		"null":    nil,
		"nan":     math.NaN(),
		"inf":     math.Inf(1),
	}

	tests := []struct {
		name string
		want float64
		ok   bool
	}{
		{"float", 42.5, true},
		{"int", 7, true},
		{"int64", 9, true},
		{"float32", 1.5, true},
		{"str", 300, true},
		{"strf", 12.75, true},
		{"badstr", 0, false},
		{"bool", 0, false},
		{"null", 0, false},
		{"nan", 0, false},
		{"inf", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := NumericValue(props, tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, v)
			}
		})
	}
}
