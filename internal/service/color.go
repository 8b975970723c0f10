package service

import "math"

// Palette is an ordered sequence of CSS colors, index-aligned with class
// breaks: palette[i] is the color for values <= breaks[i].
type Palette []string

// SequentialYlOrRd5 is the fixed 5-step sequential ramp used for thematic
// mapping, light yellow to dark red.
var SequentialYlOrRd5 = Palette{"#ffffb2", "#fecc5c", "#fd8d3c", "#f03b20", "#bd0026"}

// NoDataColor is the sentinel fill for features whose value for the active
// attribute is missing or not numeric. It is never part of any palette.
const NoDataColor = "#cccccc"

// ColorFor maps a value to the color of the first break it does not exceed.
// Values beyond the last break get the last palette color, so classification
// never drops a feature with a usable value. NaN and infinities map to
// NoDataColor.
func ColorFor(value float64, breaks []float64, palette Palette) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NoDataColor
	}
	for i, b := range breaks {
		if value <= b {
			return palette[i]
		}
	}
	return palette[len(palette)-1]
}
