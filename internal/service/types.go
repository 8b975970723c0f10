// Package service contains the layer catalog, feature store, and the
// thematic classification engine for the municipal map.
package service

// LayerConfig describes one map layer of the municipality.
// Single source of truth: Huma reads the tags for OpenAPI + validation,
// the viewer handlers read them when rendering layer cards and toggles.
type LayerConfig struct {
	ID             string   `json:"id,omitempty" yaml:"id" doc:"Unique layer identifier" example:"sectors"`
	Name           string   `json:"name" yaml:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name" example:"Census sectors"`
	File           string   `json:"file" yaml:"file" required:"true" doc:"GeoJSON source file name" example:"sectors.geojson"`
	GeomType       string   `json:"geomType" yaml:"geomType" required:"true" enum:"polygon,line,point" doc:"Geometry type" example:"polygon" default:"polygon"`
	DefaultVisible bool     `json:"defaultVisible" yaml:"defaultVisible" default:"false" doc:"Whether layer is visible by default"`
	Fill           string   `json:"fill,omitempty" yaml:"fill" doc:"Fill color (CSS)" example:"#3388ff" default:"#3388ff"`
	Opacity        float64  `json:"opacity,omitempty" yaml:"opacity" minimum:"0" maximum:"1" default:"0.3" doc:"Fill opacity (0-1)"`
	BlackBorder    bool     `json:"blackBorder" yaml:"blackBorder" default:"false" doc:"Always render black borders at weight 2 regardless of fill"`
	Thematic       bool     `json:"thematic" yaml:"thematic" default:"false" doc:"Whether the layer is eligible for thematic mapping"`
	Projected      bool     `json:"projected" yaml:"projected" default:"false" doc:"Whether the source file may carry projected (non-geographic) coordinates"`
	InfoFields     []string `json:"infoFields,omitempty" yaml:"infoFields" doc:"Attribute names shown in popups and the attribute table"`
}

// FeatureStyle is the resolved visual style of a single feature, in the
// shape the map client consumes (Leaflet-compatible path options).
type FeatureStyle struct {
	FillColor   string  `json:"fillColor" doc:"Fill color (CSS)"`
	Color       string  `json:"color" doc:"Border color (CSS)"`
	Weight      float64 `json:"weight" doc:"Border width in pixels"`
	FillOpacity float64 `json:"fillOpacity" doc:"Fill opacity (0-1)"`
	Radius      float64 `json:"radius,omitempty" doc:"Marker radius, point layers only"`
}

// AttributeInfo describes one numeric attribute of the thematic layer,
// with how many features carry a usable value for it.
type AttributeInfo struct {
	Name  string `json:"name" doc:"Attribute name"`
	Count int    `json:"count" doc:"Number of features with a coercible numeric value"`
}
