package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Errors surfaced to the user at the operation boundary. Neither is fatal;
// the map stays interactive after both.
var (
	// ErrLayerNotLoaded means the thematic layer has not been toggled on yet.
	ErrLayerNotLoaded = errors.New("thematic layer is not loaded")
	// ErrNoNumericData means no feature had a coercible numeric value for
	// the chosen attribute. Prior thematic state is left untouched.
	ErrNoNumericData = errors.New("no valid numeric data for attribute")
)

// ThematicState is the active classification: attribute, breaks, and
// palette, always replaced as one unit so readers never observe a mixed
// combination.
type ThematicState struct {
	Attribute string    `json:"attribute" doc:"Active attribute name"`
	Breaks    []float64 `json:"breaks" doc:"Ascending class-break thresholds"`
	Palette   Palette   `json:"palette" doc:"Colors index-aligned with breaks"`
}

// Active reports whether a thematic attribute is currently applied.
func (s ThematicState) Active() bool {
	return s.Attribute != ""
}

// Thematic orchestrates the apply/reset lifecycle of thematic mapping over
// one designated layer of the feature store.
type Thematic struct {
	store   *FeatureStore
	layerID string
	classes int
	palette Palette
	bus     *EventBus
	log     *zap.Logger

	mu    sync.RWMutex
	state ThematicState
}

// NewThematic creates the thematic controller for the given layer, with the
// fixed class count of 5 and the sequential yellow-to-red ramp.
func NewThematic(store *FeatureStore, layerID string, bus *EventBus, log *zap.Logger) *Thematic {
	if log == nil {
		log = zap.NewNop()
	}
	return &Thematic{
		store:   store,
		layerID: layerID,
		classes: 5,
		palette: SequentialYlOrRd5,
		bus:     bus,
		log:     log,
	}
}

// LayerID returns the ID of the thematic-eligible layer.
func (t *Thematic) LayerID() string {
	return t.layerID
}

// State returns a snapshot of the current thematic state.
func (t *Thematic) State() ThematicState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Apply classifies the layer by the given attribute and restyles every
// feature. On any failure the prior state and styles are left untouched.
func (t *Thematic) Apply(attribute string) (ThematicState, error) {
	if attribute == "" {
		return ThematicState{}, fmt.Errorf("attribute name is required")
	}

	ld, ok := t.store.Get(t.layerID)
	if !ok {
		return ThematicState{}, ErrLayerNotLoaded
	}

	values := make([]float64, 0, len(ld.Collection.Features))
	for _, f := range ld.Collection.Features {
		if v, ok := NumericValue(f.Properties, attribute); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return ThematicState{}, fmt.Errorf("%w: %s", ErrNoNumericData, attribute)
	}

	breaks := QuantileBreaks(values, t.classes)

	styles := make([]FeatureStyle, len(ld.Collection.Features))
	for i, f := range ld.Collection.Features {
		v, ok := NumericValue(f.Properties, attribute)
		styles[i] = ThematicStyle(v, ok, breaks, t.palette)
	}
	if err := t.store.SetStyles(t.layerID, styles); err != nil {
		return ThematicState{}, err
	}

	state := ThematicState{Attribute: attribute, Breaks: breaks, Palette: t.palette}
	t.mu.Lock()
	t.state = state
	t.mu.Unlock()

	t.log.Info("thematic applied",
		zap.String("attribute", attribute),
		zap.Int("values", len(values)),
		zap.Float64s("breaks", breaks))
	if t.bus != nil {
		t.bus.Publish(Event{Resource: "thematic", Action: "applied", ID: attribute})
	}
	return state, nil
}

// Reset clears the thematic state and restores every feature of the layer
// to its configured default style. A no-op when the layer is not loaded;
// calling it twice is equivalent to calling it once.
func (t *Thematic) Reset() error {
	ld, ok := t.store.Get(t.layerID)
	if !ok {
		return nil
	}

	t.mu.Lock()
	t.state = ThematicState{}
	t.mu.Unlock()

	if err := t.store.SetStyles(t.layerID, defaultStyles(ld.Config, ld.Collection)); err != nil {
		return err
	}

	t.log.Info("thematic reset", zap.String("layer", t.layerID))
	if t.bus != nil {
		t.bus.Publish(Event{Resource: "thematic", Action: "reset", ID: t.layerID})
	}
	return nil
}

// RestingStyle resolves the style a feature returns to after a hover ends.
// While a thematic attribute is active on the feature's layer, the thematic
// color is recomputed from the stored breaks and palette rather than
// reverting to the plain default: thematic styling outranks default styling
// whenever active.
func (t *Thematic) RestingStyle(layerID string, index int) (FeatureStyle, error) {
	ld, ok := t.store.Get(layerID)
	if !ok {
		return FeatureStyle{}, fmt.Errorf("layer %q not loaded", layerID)
	}
	if index < 0 || index >= len(ld.Collection.Features) {
		return FeatureStyle{}, fmt.Errorf("layer %q has no feature %d", layerID, index)
	}

	if layerID == t.layerID {
		state := t.State()
		if state.Active() {
			f := ld.Collection.Features[index]
			return ResolveStyle(ld.Config, f, &state), nil
		}
	}
	return DefaultStyle(ld.Config, ld.Collection.Features[index].Geometry), nil
}

// Attributes lists the numeric attributes of the thematic layer, with how
// many features carry a usable value for each, sorted by name.
func (t *Thematic) Attributes() ([]AttributeInfo, error) {
	ld, ok := t.store.Get(t.layerID)
	if !ok {
		return nil, ErrLayerNotLoaded
	}

	counts := make(map[string]int)
	for _, f := range ld.Collection.Features {
		for name := range f.Properties {
			if _, ok := NumericValue(f.Properties, name); ok {
				counts[name]++
			}
		}
	}

	attrs := make([]AttributeInfo, 0, len(counts))
	for name, count := range counts {
		attrs = append(attrs, AttributeInfo{Name: name, Count: count})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
	return attrs, nil
}
