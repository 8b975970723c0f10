package service

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/munimap/munimap/internal/geo"
)

// LayerData is one loaded layer: its parsed feature collection plus the
// per-feature resolved styles, index-aligned with Collection.Features.
// Geometry and properties are never mutated after load. Styles are swapped
// by Apply/Reset under the store lock; anything iterating styles outside
// the lock must go through StylesSnapshot.
type LayerData struct {
	Config     LayerConfig
	Collection *geojson.FeatureCollection
	Styles     []FeatureStyle
}

// FeatureStore holds the loaded layers of the municipality in memory.
// Every actual load and unload is announced on the bus, whichever entry
// point triggered it.
type FeatureStore struct {
	sourcesDir string
	bus        *EventBus
	log        *zap.Logger

	mu     sync.RWMutex
	layers map[string]*LayerData
}

// NewFeatureStore creates a feature store reading GeoJSON files from
// dataDir/sources.
func NewFeatureStore(dataDir string, bus *EventBus, log *zap.Logger) *FeatureStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeatureStore{
		sourcesDir: filepath.Join(dataDir, "sources"),
		bus:        bus,
		log:        log,
		layers:     make(map[string]*LayerData),
	}
}

// Load reads, parses, and reprojects a layer's GeoJSON source, then resolves
// every feature's default style. Loading an already-loaded layer is a no-op
// returning the cached data, so repeated toggles never re-read the file.
// A "loaded" event fires only when the file was actually read.
func (s *FeatureStore) Load(cfg LayerConfig) (*LayerData, error) {
	ld, fresh, err := s.load(cfg)
	if err != nil {
		return nil, err
	}
	if fresh && s.bus != nil {
		s.bus.Publish(Event{Resource: "layers", Action: "loaded", ID: cfg.ID})
	}
	return ld, nil
}

func (s *FeatureStore) load(cfg LayerConfig) (*LayerData, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ld, ok := s.layers[cfg.ID]; ok {
		return ld, false, nil
	}

	path := filepath.Join(s.sourcesDir, cfg.File)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("loading layer %q: %w", cfg.Name, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, false, fmt.Errorf("parsing layer %q: %w", cfg.Name, err)
	}

	// One-time preprocessing: projected sources become WGS84 before the
	// layer is visible to anyone. ToWGS84 skips already-geographic input.
	if cfg.Projected {
		geo.ToWGS84(fc, geo.SIRGAS2000UTM22S)
	}

	ld := &LayerData{
		Config:     cfg,
		Collection: fc,
		Styles:     defaultStyles(cfg, fc),
	}
	s.layers[cfg.ID] = ld

	s.log.Info("layer loaded",
		zap.String("layer", cfg.ID),
		zap.Int("features", len(fc.Features)))
	return ld, true, nil
}

// Get returns a loaded layer.
func (s *FeatureStore) Get(id string) (*LayerData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ld, ok := s.layers[id]
	return ld, ok
}

// Loaded reports whether a layer is currently loaded.
func (s *FeatureStore) Loaded(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.layers[id]
	return ok
}

// Unload drops a layer from memory. Unloading an absent layer is a no-op
// and fires no event.
func (s *FeatureStore) Unload(id string) {
	s.mu.Lock()
	_, ok := s.layers[id]
	delete(s.layers, id)
	s.mu.Unlock()

	if ok && s.bus != nil {
		s.bus.Publish(Event{Resource: "layers", Action: "unloaded", ID: id})
	}
}

// LoadedIDs returns the IDs of all loaded layers.
func (s *FeatureStore) LoadedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.layers))
	for id := range s.layers {
		ids = append(ids, id)
	}
	return ids
}

// StylesSnapshot returns a copy of a loaded layer's current styles. The
// copy is safe to iterate while Apply or Reset swap the live slice.
func (s *FeatureStore) StylesSnapshot(id string) ([]FeatureStyle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ld, ok := s.layers[id]
	if !ok {
		return nil, false
	}
	styles := make([]FeatureStyle, len(ld.Styles))
	copy(styles, ld.Styles)
	return styles, true
}

// SetStyles replaces the per-feature styles of a loaded layer. The slice
// must be index-aligned with the layer's features.
func (s *FeatureStore) SetStyles(id string, styles []FeatureStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ld, ok := s.layers[id]
	if !ok {
		return fmt.Errorf("layer %q not loaded", id)
	}
	if len(styles) != len(ld.Collection.Features) {
		return fmt.Errorf("layer %q: %d styles for %d features", id, len(styles), len(ld.Collection.Features))
	}
	ld.Styles = styles
	return nil
}

// NumericValue extracts an attribute as a finite number. Numbers and numeric
// strings coerce; null, missing, and everything else report ok=false rather
// than zero, so absent and zero-valued attributes stay distinguishable.
func NumericValue(props geojson.Properties, name string) (float64, bool) {
	v, ok := props[name]
	if !ok || v == nil {
		return 0, false
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
