package service

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Style constants shared by default and thematic rendering.
const (
	thematicBorderColor  = "#333333"
	thematicBorderWeight = 1.0
	thematicFillOpacity  = 0.8
	defaultBorderWeight  = 2.0
	defaultFillOpacity   = 0.3
	pointRadius          = 6.0
	pointBorderColor     = "#ffffff"
	pointBorderWeight    = 2.0
	pointFillOpacity     = 0.7
	hoverBorderColor     = "#ffffff"
	hoverBorderWeight    = 3.0
	forcedBlackBorder    = "#000000"
)

// DefaultStyle resolves a feature's resting style when no thematic attribute
// is active: the layer's single configured fill at opacity 0.3 with the
// border matching the fill, except layers flagged BlackBorder, which always
// carry black weight-2 borders, and point features, which render as fixed
// circle markers.
func DefaultStyle(cfg LayerConfig, geom orb.Geometry) FeatureStyle {
	if isPoint(geom) {
		return FeatureStyle{
			FillColor:   cfg.Fill,
			Color:       pointBorderColor,
			Weight:      pointBorderWeight,
			FillOpacity: pointFillOpacity,
			Radius:      pointRadius,
		}
	}

	border := cfg.Fill
	if cfg.BlackBorder {
		border = forcedBlackBorder
	}
	opacity := cfg.Opacity
	if opacity == 0 {
		opacity = defaultFillOpacity
	}
	return FeatureStyle{
		FillColor:   cfg.Fill,
		Color:       border,
		Weight:      defaultBorderWeight,
		FillOpacity: opacity,
	}
}

// ThematicStyle resolves a feature's style while a thematic attribute is
// active: classed fill from the value, near-black weight-1 border. Features
// without a usable value keep the shape but get the no-data fill.
func ThematicStyle(value float64, ok bool, breaks []float64, palette Palette) FeatureStyle {
	fill := NoDataColor
	if ok {
		fill = ColorFor(value, breaks, palette)
	}
	return FeatureStyle{
		FillColor:   fill,
		Color:       thematicBorderColor,
		Weight:      thematicBorderWeight,
		FillOpacity: thematicFillOpacity,
	}
}

// HoverStyle widens and whitens the border while preserving the current
// fill. The resting style is restored on hover-end via ResolveStyle, so
// thematic styling outranks the default whenever active.
func HoverStyle(current FeatureStyle) FeatureStyle {
	current.Color = hoverBorderColor
	current.Weight = hoverBorderWeight
	return current
}

// ResolveStyle resolves a single feature's resting style by precedence:
// an active thematic state on a thematic-eligible layer wins over the
// layer's static configuration.
func ResolveStyle(cfg LayerConfig, f *geojson.Feature, state *ThematicState) FeatureStyle {
	if state != nil && state.Active() && cfg.Thematic && !isPoint(f.Geometry) {
		v, ok := NumericValue(f.Properties, state.Attribute)
		return ThematicStyle(v, ok, state.Breaks, state.Palette)
	}
	return DefaultStyle(cfg, f.Geometry)
}

// defaultStyles resolves the resting style of every feature in a collection.
func defaultStyles(cfg LayerConfig, fc *geojson.FeatureCollection) []FeatureStyle {
	styles := make([]FeatureStyle, len(fc.Features))
	for i, f := range fc.Features {
		styles[i] = DefaultStyle(cfg, f.Geometry)
	}
	return styles
}

func isPoint(geom orb.Geometry) bool {
	switch geom.(type) {
	case orb.Point, orb.MultiPoint:
		return true
	}
	return false
}
