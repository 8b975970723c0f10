package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munimap/munimap/internal/service"
)

func newTestAPI(t *testing.T) (humatest.TestAPI, *Services) {
	t.Helper()

	dataDir := t.TempDir()

	fc := geojson.NewFeatureCollection()
	for i, pop := range []float64{100, 200, 300, 400, 500} {
		x := float64(i)
		f := geojson.NewFeature(orb.Polygon{{{x, 0}, {x + 1, 0}, {x + 1, 1}, {x, 0}}})
		f.Properties["population"] = pop
		f.Properties["sector_code"] = i
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	sourcesDir := filepath.Join(dataDir, "sources")
	require.NoError(t, os.MkdirAll(sourcesDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sourcesDir, "sectors.geojson"), data, 0644))

	layers := service.NewLayerService(dataDir)
	store := service.NewFeatureStore(dataDir, nil, nil)
	svc := &Services{
		Layers:   layers,
		Store:    store,
		Thematic: service.NewThematic(store, "sectors", service.NewEventBus(), nil),
		Source:   service.NewSourceService(dataDir),
	}

	_, api := humatest.New(t)
	h := NewAPIHandler(svc)
	h.RegisterHealth(api)
	h.RegisterLayers(api)
	h.RegisterThematic(api)
	return api, svc
}

func TestHealthEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"ok"`)
}

func TestListLayersEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Get("/api/v1/layers")
	require.Equal(t, http.StatusOK, resp.Code)

	var layers []struct {
		ID     string `json:"id"`
		Loaded bool   `json:"loaded"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &layers))
	assert.Len(t, layers, 5)
	for _, l := range layers {
		assert.False(t, l.Loaded)
	}
}

func TestGetLayerEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Get("/api/v1/layers/sectors")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"thematic":true`)

	resp = api.Get("/api/v1/layers/ghost")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateLayerEndpoint(t *testing.T) {
	api, svc := newTestAPI(t)

	cfg, _ := svc.Layers.Get("districts")
	cfg.Opacity = 0.6

	resp := api.Put("/api/v1/layers/districts", cfg)
	require.Equal(t, http.StatusOK, resp.Code)

	got, _ := svc.Layers.Get("districts")
	assert.Equal(t, 0.6, got.Opacity)
}

func TestGetLayerFeaturesEndpoint(t *testing.T) {
	api, svc := newTestAPI(t)

	resp := api.Get("/api/v1/layers/sectors/features")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/geo+json", resp.Header().Get("Content-Type"))

	var fc struct {
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &fc))
	require.Len(t, fc.Features, 5)
	for _, f := range fc.Features {
		require.Contains(t, f.Properties, "_style")
	}

	// fetching features loads the layer as a side effect
	assert.True(t, svc.Store.Loaded("sectors"))

	resp = api.Get("/api/v1/layers/missing/features")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestThematicEndpoints(t *testing.T) {
	api, _ := newTestAPI(t)

	// before the layer is loaded, thematic operations conflict
	resp := api.Get("/api/v1/thematic/attributes")
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = api.Post("/api/v1/thematic/apply", map[string]any{"attribute": "population"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	// load via the features endpoint
	resp = api.Get("/api/v1/layers/sectors/features")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Get("/api/v1/thematic/attributes")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"population"`)

	resp = api.Post("/api/v1/thematic/apply", map[string]any{"attribute": "population"})
	require.Equal(t, http.StatusOK, resp.Code)

	var state struct {
		Attribute string    `json:"attribute"`
		Breaks    []float64 `json:"breaks"`
		Legend    []struct {
			Label string `json:"label"`
		} `json:"legend"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	assert.Equal(t, "population", state.Attribute)
	assert.Len(t, state.Breaks, 5)
	assert.Len(t, state.Legend, 5)

	// an attribute with no numeric values is unprocessable, not a crash
	resp = api.Post("/api/v1/thematic/apply", map[string]any{"attribute": "nonexistent"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	// state endpoint reflects the active classification
	resp = api.Get("/api/v1/thematic")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"population"`)

	resp = api.Post("/api/v1/thematic/reset")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Get("/api/v1/thematic")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), `"legend"`)
}

func TestSourcesEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Get("/api/v1/sources")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "sectors.geojson")
}
