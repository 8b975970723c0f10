package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// LayerService manages the municipality's layer catalog. The catalog is
// read from data-dir/layers.yaml; when the file does not exist the built-in
// defaults for the five municipal layers are used and written back.
type LayerService struct {
	dataDir string
	layers  map[string]LayerConfig
	order   []string
	mu      sync.RWMutex
}

// NewLayerService creates a layer service backed by dataDir/layers.yaml.
func NewLayerService(dataDir string) *LayerService {
	s := &LayerService{
		dataDir: dataDir,
		layers:  make(map[string]LayerConfig),
	}
	if err := s.loadFromDisk(); err != nil {
		s.useDefaults()
	}
	if len(s.layers) == 0 {
		s.useDefaults()
	}
	return s
}

// List returns all layer configurations in catalog order.
func (s *LayerService) List() []LayerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]LayerConfig, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.layers[id])
	}
	return result
}

// Get returns a layer by ID.
func (s *LayerService) Get(id string) (LayerConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layer, ok := s.layers[id]
	return layer, ok
}

// ThematicLayer returns the catalog's thematic-eligible layer. The catalog
// designates exactly one; the first wins if a hand-edited file lists more.
func (s *LayerService) ThematicLayer() (LayerConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		if s.layers[id].Thematic {
			return s.layers[id], true
		}
	}
	return LayerConfig{}, false
}

// Update replaces a layer configuration by ID and persists the catalog.
func (s *LayerService) Update(id string, layer LayerConfig) (LayerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.layers[id]; !exists {
		return LayerConfig{}, fmt.Errorf("layer %q not found", id)
	}

	layer.ID = id
	s.layers[id] = layer
	if err := s.saveToDisk(); err != nil {
		return LayerConfig{}, err
	}

	return layer, nil
}

// configFile returns the path to the catalog file.
func (s *LayerService) configFile() string {
	return filepath.Join(s.dataDir, "layers.yaml")
}

// loadFromDisk loads the catalog from disk.
func (s *LayerService) loadFromDisk() error {
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return err
	}

	var layers []LayerConfig
	if err := yaml.Unmarshal(data, &layers); err != nil {
		return err
	}

	s.layers = make(map[string]LayerConfig, len(layers))
	s.order = s.order[:0]
	for _, l := range layers {
		s.layers[l.ID] = l
		s.order = append(s.order, l.ID)
	}
	return nil
}

// saveToDisk persists the catalog to disk.
func (s *LayerService) saveToDisk() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	layers := make([]LayerConfig, 0, len(s.order))
	for _, id := range s.order {
		layers = append(layers, s.layers[id])
	}
	data, err := yaml.Marshal(layers)
	if err != nil {
		return err
	}

	return os.WriteFile(s.configFile(), data, 0644)
}

// useDefaults installs the built-in catalog.
func (s *LayerService) useDefaults() {
	s.layers = make(map[string]LayerConfig, len(defaultCatalog))
	s.order = s.order[:0]
	for _, l := range defaultCatalog {
		s.layers[l.ID] = l
		s.order = append(s.order, l.ID)
	}
}

// defaultCatalog is the five-layer catalog of the municipality. District
// boundaries always render black borders so they stay legible over any
// thematic fill; census sectors are the thematic-eligible layer; residences
// arrive from the municipal cadastre in the projected CRS.
var defaultCatalog = []LayerConfig{
	{
		ID:             "districts",
		Name:           "District boundaries",
		File:           "districts.geojson",
		GeomType:       "polygon",
		DefaultVisible: true,
		Fill:           "#2c7fb8",
		Opacity:        0.3,
		BlackBorder:    true,
		InfoFields:     []string{"district", "name"},
	},
	{
		ID:         "sectors",
		Name:       "Census sectors",
		File:       "sectors.geojson",
		GeomType:   "polygon",
		Fill:       "#31a354",
		Opacity:    0.3,
		Thematic:   true,
		InfoFields: []string{"sector_code", "municipality", "population", "households", "area_km2"},
	},
	{
		ID:         "urban_rural",
		Name:       "Urban / rural split",
		File:       "urban_rural.geojson",
		GeomType:   "polygon",
		Fill:       "#756bb1",
		Opacity:    0.3,
		InfoFields: []string{"situation"},
	},
	{
		ID:         "housing_deficit",
		Name:       "Housing deficit",
		File:       "housing_deficit.geojson",
		GeomType:   "polygon",
		Fill:       "#e6550d",
		Opacity:    0.3,
		InfoFields: []string{"sector_code", "deficit_total", "deficit_rate"},
	},
	{
		ID:         "residences",
		Name:       "Residences",
		File:       "residences.geojson",
		GeomType:   "point",
		Fill:       "#e31a1c",
		Projected:  true,
		InfoFields: []string{"address", "type"},
	},
}
