package mapclient

// HealthBody is the health check response.
type HealthBody struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// InfoBody describes the service.
type InfoBody struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	DataDir  string   `json:"data_dir"`
	DB       bool     `json:"db"`
	Features []string `json:"features"`
}

// LayerConfig mirrors a catalog entry.
type LayerConfig struct {
	ID             string   `json:"id,omitempty"`
	Name           string   `json:"name"`
	File           string   `json:"file"`
	GeomType       string   `json:"geomType"`
	DefaultVisible bool     `json:"defaultVisible"`
	Fill           string   `json:"fill,omitempty"`
	Opacity        float64  `json:"opacity,omitempty"`
	BlackBorder    bool     `json:"blackBorder"`
	Thematic       bool     `json:"thematic"`
	Projected      bool     `json:"projected"`
	InfoFields     []string `json:"infoFields,omitempty"`
}

// LayerStatus is a catalog entry plus its load state.
type LayerStatus struct {
	LayerConfig
	Loaded bool `json:"loaded"`
}

// SourceFile describes one GeoJSON source file.
type SourceFile struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

// LegendEntry is one class of the legend.
type LegendEntry struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Color string  `json:"color"`
	Label string  `json:"label"`
}

// ThematicBody is the thematic state plus the derived legend.
type ThematicBody struct {
	Attribute string        `json:"attribute"`
	Breaks    []float64     `json:"breaks,omitempty"`
	Palette   []string      `json:"palette,omitempty"`
	Legend    []LegendEntry `json:"legend,omitempty"`
}

// AttributeInfo is one classifiable attribute of the thematic layer.
type AttributeInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AttributeStats summarizes a numeric attribute of a mirrored layer.
type AttributeStats struct {
	Attribute string  `json:"attribute"`
	Count     int     `json:"count"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
}

// MessageBody is a plain result message.
type MessageBody struct {
	Message string `json:"message"`
}

// TablesBody lists DuckDB tables.
type TablesBody struct {
	Tables []string `json:"tables"`
}

// QueryInputBody is a SQL query request.
type QueryInputBody struct {
	Query string `json:"query"`
}

// QueryBody is a SQL query result.
type QueryBody struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Count   int              `json:"count"`
}
